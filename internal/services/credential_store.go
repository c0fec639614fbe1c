package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"coffeestock/internal/models"
	"coffeestock/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// DefaultOperationTimeout bounds hashing and persistence when no timeout is configured.
const DefaultOperationTimeout = 10 * time.Second

// signupCredentials is re-validated here even though the UI checks the same rules.
// bcrypt only accepts 72 bytes, which max alone does not enforce for multibyte input.
type signupCredentials struct {
	Username string `validate:"required,min=3,max=100"`
	Password string `validate:"required,min=4,max=72,maxbytes=72"`
}

type loginCredentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// CredentialStore owns registered accounts and the device session.
//
// Writers of the UserSet are serialized by writeMu for the whole
// check, hash and append sequence. Readers never take writeMu, so a
// signup that is busy hashing does not hold up logins.
type CredentialStore struct {
	users     repositories.UserRepository
	sessions  repositories.SessionRepository
	hasher    PasswordHasher
	publisher EventPublisher
	validate  *validator.Validate
	timeout   time.Duration

	writeMu sync.Mutex

	mu              sync.RWMutex
	currentUsername string
	loggedIn        bool

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialStore creates a CredentialStore. publisher may be nil; a
// non-positive timeout selects DefaultOperationTimeout.
func NewCredentialStore(users repositories.UserRepository, sessions repositories.SessionRepository, hasher PasswordHasher, publisher EventPublisher, timeout time.Duration) *CredentialStore {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	validate := validator.New()
	if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
		log.Fatalf("Failed to register maxbytes validation: %v", err)
	}
	return &CredentialStore{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		publisher: publisher,
		validate:  validate,
		timeout:   timeout,
	}
}

// maxBytes limits the encoded length of a string field to the tag parameter.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// UserExists reports whether an account matches username case-insensitively.
// A read failure is logged and reported as false.
func (s *CredentialStore) UserExists(ctx context.Context, username string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.users.Load(ctx)
	if err != nil {
		log.Printf("Error getting users: %v", err)
		return false
	}
	return users.Contains(username)
}

// GetUser returns the account matching username case-insensitively.
func (s *CredentialStore) GetUser(ctx context.Context, username string) (models.UserRecord, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.users.Load(ctx)
	if err != nil {
		log.Printf("Error getting user %s: %v", username, err)
		return models.UserRecord{}, false
	}
	return users.Find(username)
}

// CreateUser registers a new account with a bcrypt hash of password.
func (s *CredentialStore) CreateUser(ctx context.Context, username, password string) models.Result {
	username = models.NormalizeUsername(username)
	if err := s.validate.Struct(signupCredentials{Username: username, Password: password}); err != nil {
		return models.Fail(ErrValidation, validationMessage(err))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.users.Load(ctx)
	if err != nil {
		log.Printf("Error creating user %s: %v", username, err)
		return persistenceFailure(err, msgCreateFailed)
	}
	if users.Contains(username) {
		return models.Fail(ErrUsernameTaken, msgUsernameTaken)
	}

	passwordHash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", username, err)
		if isTimeout(err) {
			return models.Fail(ErrOperationTimedOut, msgTimedOut)
		}
		if errors.Is(err, ErrValidation) {
			return models.Fail(ErrValidation, msgPasswordTooLong)
		}
		return models.Fail(ErrHashing, msgCreateFailed)
	}

	users = append(users, models.UserRecord{
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err := s.users.Save(ctx, users); err != nil {
		log.Printf("Error saving users: %v", err)
		return persistenceFailure(err, msgCreateFailed)
	}

	log.Printf("User created successfully: %s", username)
	s.publish(EventAccountCreated, username)
	return models.Ok()
}

// ValidateCredentials checks username and password and starts a session on success.
// Unknown users and wrong passwords produce the same result.
func (s *CredentialStore) ValidateCredentials(ctx context.Context, username, password string) models.Result {
	username = models.NormalizeUsername(username)
	if err := s.validate.Struct(loginCredentials{Username: username, Password: password}); err != nil {
		return models.Fail(ErrValidation, msgMissingCredentials)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.users.Load(opCtx)
	if err != nil {
		log.Printf("Error validating credentials for %s: %v", username, err)
		return persistenceFailure(err, msgLoginFailed)
	}

	user, found := users.Find(username)
	if !found {
		s.burnCompare(opCtx, password)
		return models.Fail(ErrInvalidCredentials, msgInvalidCredentials)
	}

	match, err := s.hasher.Compare(opCtx, user.PasswordHash, password)
	if err != nil {
		if isTimeout(err) {
			log.Printf("Timed out verifying password for %s", user.Username)
			return models.Fail(ErrOperationTimedOut, msgTimedOut)
		}
		log.Printf("Stored hash for %s is unusable: %v", user.Username, err)
		return models.Fail(ErrInvalidCredentials, msgInvalidCredentials)
	}
	if !match {
		return models.Fail(ErrInvalidCredentials, msgInvalidCredentials)
	}

	// The user is authenticated either way; a failed session write only
	// means the login will not survive a restart.
	session := s.SetSession(ctx, user.Username)

	log.Printf("Login successful for user: %s", user.Username)
	if !session.Success {
		log.Printf("Warning: session for %s was not persisted: %v", user.Username, session.Kind)
		return models.Result{Success: true, Error: session.Error, Kind: session.Kind}
	}
	return models.Ok()
}

// SetSession marks username as logged in, in memory first and then in storage.
// On a storage failure the in-memory session is kept and ErrSessionPersist is reported.
func (s *CredentialStore) SetSession(ctx context.Context, username string) models.Result {
	username = models.NormalizeUsername(username)
	if username == "" {
		return models.Fail(ErrValidation, "Username is required.")
	}

	s.setMirror(username, true)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.Save(ctx, username); err != nil {
		log.Printf("Error setting session: %v", err)
		if isTimeout(err) {
			return models.Fail(ErrOperationTimedOut, msgTimedOut)
		}
		return models.Fail(ErrSessionPersist, msgSessionFailed)
	}

	s.publish(EventSessionStarted, username)
	return models.Ok()
}

// CheckAuthStatus restores the session from storage. Only a stored session
// with both a username and the login flag counts; anything else, including
// a read error, leaves the store logged out.
func (s *CredentialStore) CheckAuthStatus(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.sessions.Load(ctx)
	if err != nil {
		log.Printf("Error checking auth status: %v", err)
		s.setMirror("", false)
		return false
	}
	if !session.Valid() {
		s.setMirror("", false)
		return false
	}

	s.setMirror(session.CurrentUsername, true)
	return true
}

// Logout clears the session. It always appears to succeed; storage errors are only logged.
func (s *CredentialStore) Logout(ctx context.Context) {
	previous := s.CurrentUser()
	s.setMirror("", false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.Clear(ctx); err != nil {
		log.Printf("Error during logout: %v", err)
	} else {
		log.Println("User logged out successfully")
	}

	if previous != "" {
		s.publish(EventSessionEnded, previous)
	}
}

// ClearAllUsers removes every registered account. For development and tests only.
func (s *CredentialStore) ClearAllUsers(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.users.Clear(ctx); err != nil {
		log.Printf("Error clearing users: %v", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	log.Println("All users cleared from preferences")
	return nil
}

// CurrentUser returns the username of the in-memory session, or "" when logged out.
func (s *CredentialStore) CurrentUser() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUsername
}

// IsLoggedIn reports the in-memory login flag. It reflects storage only after CheckAuthStatus.
func (s *CredentialStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

func (s *CredentialStore) setMirror(username string, loggedIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUsername = username
	s.loggedIn = loggedIn
}

// burnCompare runs a comparison against a throwaway hash so an unknown
// username costs about as much time as a wrong password.
func (s *CredentialStore) burnCompare(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.Background(), "coffeestock-timing-guard")
		if err != nil {
			log.Printf("Error preparing timing guard hash: %v", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Compare(ctx, s.dummyHash, password)
}

func (s *CredentialStore) publish(eventType, username string) {
	if s.publisher == nil {
		return
	}
	body, err := NewAccountEvent(eventType, username).Marshal()
	if err != nil {
		log.Printf("Failed to encode %s event: %v", eventType, err)
		return
	}
	if err := s.publisher.Publish(AccountExchange, eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for %s: %v", eventType, username, err)
	}
}

// persistenceFailure maps a storage error to a caller-safe result.
func persistenceFailure(err error, message string) models.Result {
	if isTimeout(err) {
		return models.Fail(ErrOperationTimedOut, msgTimedOut)
	}
	return models.Fail(ErrPersistence, message)
}

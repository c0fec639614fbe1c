package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPersistence         = errors.New("persistence failure")
	ErrHashing             = errors.New("password hashing failed")
	ErrSessionPersist      = errors.New("session persist failure")
	ErrOperationTimedOut   = errors.New("operation timed out")
	ErrDegradedEnvironment = errors.New("relational storage unavailable on this platform")
	ErrCatalogUnavailable  = errors.New("product catalog unavailable")
)

// User-facing messages. These are shown verbatim, so they carry no technical detail.
const (
	msgUsernameTaken      = "Username already taken. Please choose a different username or login with your existing account."
	msgInvalidCredentials = "Invalid credentials"
	msgCreateFailed       = "An error occurred while creating your account. Please try again."
	msgLoginFailed        = "An error occurred during login. Please try again."
	msgSessionFailed      = "Your session could not be saved. You may need to log in again next time."
	msgTimedOut           = "The operation took too long. Please try again."
	msgMissingCredentials = "Please enter both username and password."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
)

// isTimeout reports whether err stems from an expired operation deadline.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// validationMessage turns the first validator failure into a short sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		switch e.Tag() {
		case "required":
			return fmt.Sprintf("%s is required.", e.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters.", e.Field(), e.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters.", e.Field(), e.Param())
		case "maxbytes":
			return fmt.Sprintf("%s must be at most %s bytes.", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s is invalid.", e.Field())
	}
	return msgMissingCredentials
}

package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the one-way salted hashing primitive used for credentials.
// Compare returns false with a nil error on a plain mismatch.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt at a fixed cost.
// Both operations run on their own goroutine so a context deadline can
// release the caller while bcrypt finishes in the background.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor in use.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

type hashOutcome struct {
	hash []byte
	err  error
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	done := make(chan hashOutcome, 1)
	go func() {
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
		done <- hashOutcome{hash: b, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-done:
		if errors.Is(out.err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", ErrValidation, out.err)
		}
		if out.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", out.err)
		}
		return string(out.hash), nil
	}
}

// Compare checks password against hash in constant time.
func (h *BcryptHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-done:
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
}

/*
Package user holds account records and the credential store behind the
register and login endpoints.
*/
package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists is returned when the username is taken.
	ErrAlreadyExists = errors.New("username already exists")
)

// User is a registered account. Username is the identity the relay shows to other clients.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Store persists accounts.
type Store interface {
	// Create inserts a new account. It returns ErrAlreadyExists for a taken username.
	Create(ctx context.Context, username, passwordHash string) (User, error)

	// GetByUsername returns the account or ErrNotFound.
	GetByUsername(ctx context.Context, username string) (User, error)
}

// Package users owns user accounts: persistence contract, cached lookups and
// sign-in with a Google credential.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/sandyurl/shortener/internal/identity"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credential")
)

// User is a registered account.
type User struct {
	ID           identity.UserID `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	AvatarURL    string          `json:"avatarUrl,omitempty"`
	Role         identity.Role   `json:"role"`
	GoogleSignIn bool            `json:"googleSignIn"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Identity returns the caller identity this user authenticates as.
func (u *User) Identity() identity.Identity {
	return identity.NewUser(u.ID, u.Role)
}

// Repository persists users.
type Repository interface {
	FindByID(ctx context.Context, id identity.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create stores a new user, assigning its ID. It returns ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, user *User) (*User, error)

	// List returns users in registration order.
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id identity.UserID) error
}

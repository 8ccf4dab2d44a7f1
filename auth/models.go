// Package auth, as previously noted, handles authentication.
// This file defines the credential model and the store contract the rest of
// the package depends on.
package auth

import (
	"context"
	"time"
)

// Role controls authorization decisions.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an identity record held by the credential store.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose hashed password
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserStore is the credential store. Implementations must keep Email unique
// under concurrent Create calls and return apperror.ErrDuplicateEmail (by
// errors.Is) for the loser, and apperror.ErrUserNotFound for unknown users.
type UserStore interface {
	// Create assigns the next ID and CreatedAt and returns the stored copy.
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// SetRole is internal role assignment; no HTTP route reaches it.
	SetRole(ctx context.Context, id int64, role Role) error
}

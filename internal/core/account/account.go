// Package account defines registered users and their persistence port.
package account

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for account operations.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is a registered shopper. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary is the public projection of a user returned by the API.
type Summary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public fields of u.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Store defines persistence operations for users.
type Store interface {
	// Create stores a new user. Returns ErrEmailTaken if the email is in use.
	Create(ctx context.Context, u User) error
	// FindByEmail returns the user with the given email. Returns ErrNotFound
	// if none exists.
	FindByEmail(ctx context.Context, email string) (User, error)
}

// NormalizeEmail trims surrounding whitespace and lowercases the address so
// uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

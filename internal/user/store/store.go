// Package store persists user and profile records. Implementations are
// interface-driven so the service stays testable with the in-memory variant
// and runs on PostgreSQL in production.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AliAbadiHub/val-backend/internal/user"
)

var (
	// ErrNotFound keeps storage 404s consistent across implementations.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail marks a unique-constraint violation on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateProfile marks a second profile for the same user.
	ErrDuplicateProfile = errors.New("profile already exists")
)

// UserStore persists identity records. Email lookups are case-sensitive,
// matching the unique index.
type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.WithProfile, error)
	GetUserWithProfile(ctx context.Context, email string) (*user.WithProfile, error)
	// UpdateUser overwrites role, password hash and updated_at by ID.
	UpdateUser(ctx context.Context, u *user.User) error
	// DeleteUser removes the user; the profile goes with it via the store's
	// cascade, never re-derived by callers.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// ProfileStore persists the zero-or-one profile owned by each user.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *user.Profile) error
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*user.Profile, error)
	UpdateProfile(ctx context.Context, p *user.Profile) error
}

// Store is the combined persistence surface the user service consumes.
type Store interface {
	UserStore
	ProfileStore
}

package ports

import (
	"context"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// UserRepository stores users together with their credentials.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Credential returns the stored secret for username, or ErrUserNotFound.
	Credential(ctx context.Context, username string) (*domain.Credential, error)
	// Create stores the user and its credential atomically. It fails with
	// ErrDuplicateUsername or ErrDuplicateEmail without storing either.
	Create(ctx context.Context, user *domain.User, cred domain.Credential) (*domain.User, error)
}

// SessionStore persists the snapshot of the session user under a fixed key so
// the session survives restarts.
type SessionStore interface {
	Save(ctx context.Context, user *domain.User) error
	// Load returns ErrNoSession when nothing is stored.
	Load(ctx context.Context) (*domain.User, error)
	Clear(ctx context.Context) error
}

// AttemptLimiter counts failed logins per username.
type AttemptLimiter interface {
	Allowed(ctx context.Context, username string) (bool, error)
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

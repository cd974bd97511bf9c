package ports

import (
	"context"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// IdentityService owns registered users and the single session of the
// running instance.
type IdentityService interface {
	Login(ctx context.Context, username, secret string) (*domain.User, error)
	Register(ctx context.Context, email, username, secret string) (*domain.User, error)
	Logout(ctx context.Context)
	// RestoreSession re-establishes the session from the persisted snapshot
	// without re-checking the secret.
	RestoreSession(ctx context.Context) (*domain.User, error)
	// Current returns the session user, or ErrNoSession.
	Current(ctx context.Context) (*domain.User, error)
	// IssueToken signs a bearer token bound to the given session user.
	IssueToken(user *domain.User) (string, error)
	// VerifyToken resolves a bearer token to the session user it names.
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// Context keys set by Auth and OptionalAuth.
const (
	UserKey = "user"
	RoleKey = "role"
)

// TokenVerifier resolves a bearer token to the current session user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires a bearer token that names the current session user and
// injects that user into the context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			setUser(c, user)
			return next(c)
		}
	}
}

// OptionalAuth injects the session user when a valid token is present and
// lets the request through anonymously otherwise.
func OptionalAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c.Request().Header.Get("Authorization")); ok {
				if user, err := verifier.VerifyToken(c.Request().Context(), token); err == nil {
					setUser(c, user)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setUser(c echo.Context, user *domain.User) {
	c.Set(UserKey, user)
	c.Set(RoleKey, user.Role)
}

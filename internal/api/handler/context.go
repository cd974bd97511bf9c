package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metalprofile/corporate-site/internal/api/metrics"
	"github.com/metalprofile/corporate-site/internal/api/middleware"
	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

// sessionUser returns the user injected by the Auth middleware. Its absence
// on a guarded route means the middleware did not run; reject with 401.
func sessionUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// viewer returns the session user if OptionalAuth found one, or nil.
func viewer(c echo.Context) *domain.User {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	return user
}

// recordAudit appends an audit entry for the request, using the client
// address echo resolved from the connection and proxy headers.
func recordAudit(c echo.Context, audit ports.AuditService, action domain.AuditAction, actor *domain.User, details string) {
	audit.Record(c.Request().Context(), action, actor, c.RealIP(), details)
	metrics.AuditEntriesTotal.WithLabelValues(string(action)).Inc()
}

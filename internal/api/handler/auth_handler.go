package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/metalprofile/corporate-site/internal/api/metrics"
	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
	audit    ports.AuditService
	tokenTTL time.Duration
}

func NewAuthHandler(identity ports.IdentityService, audit ports.AuditService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{identity: identity, audit: audit, tokenTTL: tokenTTL}
}

// Register creates a client account and logs it in.
//
// @Summary      Register a new client
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.identity.Register(c.Request().Context(), req.Email, req.Username, req.Password)
	if err != nil {
		return err
	}
	metrics.RegistrationsTotal.Inc()

	// Recorded after creation so the entry carries the new user's id.
	recordAudit(c, h.audit, domain.ActionRegister, user, "New user registered")

	return h.respondWithToken(c, http.StatusCreated, user)
}

// Login authenticates a user and starts the session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.identity.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	recordAudit(c, h.audit, domain.ActionLogin, user, "Successful login")

	return h.respondWithToken(c, http.StatusOK, user)
}

// Logout ends the session. Tokens issued for it stop working.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.identity.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Me returns the session user.
//
// @Summary      Current session user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *domain.User) error {
	token, err := h.identity.IssueToken(user)
	if err != nil {
		return err
	}
	return c.JSON(status, authResponse{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
		User:      user,
	})
}

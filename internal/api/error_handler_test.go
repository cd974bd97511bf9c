package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

func TestHTTPErrorHandler_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrNoSession, http.StatusUnauthorized},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{fmt.Errorf("register: %w", domain.ErrDuplicateUsername), http.StatusConflict},
		{fmt.Errorf("register: %w", domain.ErrDuplicateEmail), http.StatusConflict},
		{fmt.Errorf("update article: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("update article: %w", domain.ErrArticleNotFound), http.StatusNotFound},
		{fmt.Errorf("delete comment: %w", domain.ErrCommentNotFound), http.StatusNotFound},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("create article: %w", domain.Invalid("title", "is required")), http.StatusUnprocessableEntity},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Fatalf("%v: expected error envelope, got %q", tc.err, rec.Body.String())
		}
		if tc.code == http.StatusInternalServerError && body.Error != "internal server error" {
			t.Fatalf("internal details leaked: %q", body.Error)
		}
	}
}

func TestHTTPErrorHandler_ValidationMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := fmt.Errorf("create article: %w", domain.Invalid("title", "is required"))
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "validation failed: title is required" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/metalprofile/corporate-site/internal/api/middleware"
	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
	"github.com/metalprofile/corporate-site/internal/core/service"
	"github.com/metalprofile/corporate-site/internal/infrastructure/memory"
)

// --- Stubs ---

type stubIdentity struct {
	registerFn func(ctx context.Context, email, username, secret string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, secret string) (*domain.User, error)
	loggedOut  bool
}

func (s *stubIdentity) Login(ctx context.Context, username, secret string) (*domain.User, error) {
	return s.loginFn(ctx, username, secret)
}

func (s *stubIdentity) Register(ctx context.Context, email, username, secret string) (*domain.User, error) {
	return s.registerFn(ctx, email, username, secret)
}

func (s *stubIdentity) Logout(context.Context) { s.loggedOut = true }

func (s *stubIdentity) RestoreSession(context.Context) (*domain.User, error) {
	return nil, domain.ErrNoSession
}

func (s *stubIdentity) Current(context.Context) (*domain.User, error) { return nil, domain.ErrNoSession }

func (s *stubIdentity) IssueToken(u *domain.User) (string, error) { return "token-" + u.ID, nil }

func (s *stubIdentity) VerifyToken(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNoSession
}

type recordedAudit struct {
	action  domain.AuditAction
	actorID string
	ip      string
	details string
}

type stubAudit struct {
	records []recordedAudit
	listFn  func(ctx context.Context, f ports.AuditFilter) ([]domain.AuditLogEntry, error)
}

func (s *stubAudit) Record(_ context.Context, action domain.AuditAction, actor *domain.User, ip, details string) domain.AuditLogEntry {
	r := recordedAudit{action: action, ip: ip, details: details}
	if actor != nil {
		r.actorID = actor.ID
	}
	s.records = append(s.records, r)
	return domain.AuditLogEntry{Action: action}
}

func (s *stubAudit) List(ctx context.Context, f ports.AuditFilter) ([]domain.AuditLogEntry, error) {
	return s.listFn(ctx, f)
}

type stubStats struct{}

func (stubStats) Snapshot(context.Context) domain.SiteStats {
	return domain.SiteStats{TotalVisits: 10, TopPages: []domain.PageViews{{Page: "/", Views: 5}}}
}

// --- Helpers ---

var (
	admin   = &domain.User{ID: "1", Username: "admin", Role: domain.RoleAdmin}
	partner = &domain.User{ID: "2", Username: "partner", Role: domain.RolePartner}
	client  = &domain.User{ID: "3", Username: "client", Role: domain.RoleClient}
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.RoleKey, user.Role)
	}
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func newNewsHandler(t *testing.T) (*NewsHandler, *stubAudit) {
	t.Helper()
	repo := memory.NewNewsRepository()
	articles := memory.SeedArticles()
	for i := len(articles) - 1; i >= 0; i-- {
		if err := repo.Insert(context.Background(), articles[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	audit := &stubAudit{}
	return NewNewsHandler(service.NewNewsService(repo, zerolog.Nop()), audit), audit
}

// --- Auth ---

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	audit := &stubAudit{}
	stub := &stubIdentity{
		registerFn: func(_ context.Context, email, username, secret string) (*domain.User, error) {
			if email != "new@example.com" || username != "newbie" || secret != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", email, username, secret)
			}
			return &domain.User{ID: "u-1", Username: username, Email: email, Role: domain.RoleClient}, nil
		},
	}
	h := NewAuthHandler(stub, audit, time.Hour)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"new@example.com","username":"newbie","password":"secret1"}`, nil)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decode[authResponse](t, rec)
	if resp.Token != "token-u-1" || resp.User == nil || resp.User.Role != domain.RoleClient || resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected response %+v", resp)
	}

	if len(audit.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(audit.records))
	}
	r := audit.records[0]
	if r.action != domain.ActionRegister || r.actorID != "u-1" || r.ip != "203.0.113.9" {
		t.Fatalf("unexpected audit record %+v", r)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubIdentity{
		registerFn: func(context.Context, string, string, string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, &stubAudit{}, time.Hour)

	for _, body := range []string{
		`{"email":"not-an-email","username":"x","password":"secret1"}`,
		`{"email":"a@example.com","username":"x","password":"12345"}`,
		`{"email":"a@example.com","password":"secret1"}`,
	} {
		c, _ := jsonRequest(e, http.MethodPost, "/auth/register", body, nil)
		if code := httpCode(t, h.Register(c)); code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for %s, got %d", body, code)
		}
	}

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", "not-json", nil)
	if code := httpCode(t, h.Register(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	audit := &stubAudit{}
	stub := &stubIdentity{
		registerFn: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	h := NewAuthHandler(stub, audit, time.Hour)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"a@example.com","username":"admin","password":"secret1"}`, nil)
	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if len(audit.records) != 0 {
		t.Fatalf("failed registration must not be audited")
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newEcho()
	audit := &stubAudit{}
	stub := &stubIdentity{
		loginFn: func(_ context.Context, username, secret string) (*domain.User, error) {
			if username == "admin" && secret == "admin123" {
				return admin, nil
			}
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, audit, time.Hour)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/login", `{"username":"admin","password":"admin123"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode[authResponse](t, rec); resp.Token != "token-1" || resp.User.Username != "admin" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(audit.records) != 1 || audit.records[0].action != domain.ActionLogin || audit.records[0].actorID != "1" {
		t.Fatalf("login not audited: %+v", audit.records)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/auth/login", `{"username":"admin","password":"nope"}`, nil)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(audit.records) != 1 {
		t.Fatalf("failed login must not be audited")
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	e := newEcho()
	stub := &stubIdentity{}
	h := NewAuthHandler(stub, &stubAudit{}, time.Hour)

	c, rec := jsonRequest(e, http.MethodGet, "/auth/me", "", client)
	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	if u := decode[domain.User](t, rec); u.ID != "3" {
		t.Fatalf("unexpected user %+v", u)
	}

	c, _ = jsonRequest(e, http.MethodGet, "/auth/me", "", nil)
	if code := httpCode(t, h.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", code)
	}

	c, rec = jsonRequest(e, http.MethodPost, "/auth/logout", "", client)
	if err := h.Logout(c); err != nil || rec.Code != http.StatusNoContent || !stub.loggedOut {
		t.Fatalf("logout: %v %d %v", err, rec.Code, stub.loggedOut)
	}
}

// --- News ---

func TestNewsHandler_List_HidesPendingFromAnonymous(t *testing.T) {
	e := newEcho()
	h, _ := newNewsHandler(t)

	c, rec := jsonRequest(e, http.MethodGet, "/v1/news", "", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	resp := decode[articleListResponse](t, rec)
	if resp.Total != 3 || resp.Items[0].ID != "1" {
		t.Fatalf("unexpected list %+v", resp)
	}
	third := resp.Items[2]
	if len(third.Comments) != 1 || third.PendingComments != nil || third.CanModerate {
		t.Fatalf("anonymous view leaked moderation data: %+v", third)
	}

	c, rec = jsonRequest(e, http.MethodGet, "/v1/news/3", "", admin)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	got := decode[articleResponse](t, rec)
	if len(got.PendingComments) != 1 || !got.CanModerate {
		t.Fatalf("admin should see pending comments: %+v", got)
	}
}

func TestNewsHandler_List_Search(t *testing.T) {
	e := newEcho()
	h, _ := newNewsHandler(t)

	c, rec := jsonRequest(e, http.MethodGet, "/v1/news?q=kazan", "", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp := decode[articleListResponse](t, rec); resp.Total != 1 || resp.Items[0].ID != "2" {
		t.Fatalf("unexpected search result %+v", resp)
	}
}

func TestNewsHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	h, _ := newNewsHandler(t)

	c, _ := jsonRequest(e, http.MethodGet, "/v1/news/404", "", nil)
	c.SetParamNames("id")
	c.SetParamValues("404")
	if err := h.Get(c); !errors.Is(err, domain.ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestNewsHandler_Create(t *testing.T) {
	e := newEcho()
	h, audit := newNewsHandler(t)

	c, rec := jsonRequest(e, http.MethodPost, "/v1/news", `{"title":"Price list","body":"Updated.","tagsText":"prices, 2025, prices"}`, partner)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	got := decode[articleResponse](t, rec)
	if got.AuthorID != "2" || len(got.Tags) != 2 || !got.CanModerate {
		t.Fatalf("unexpected article %+v", got)
	}
	if len(audit.records) != 1 || audit.records[0].action != domain.ActionCreateNews {
		t.Fatalf("create not audited: %+v", audit.records)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/v1/news", `{"title":"","body":"x"}`, partner)
	if code := httpCode(t, h.Create(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/v1/news", `{"title":"t","body":"b"}`, client)
	if err := h.Create(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestNewsHandler_Update(t *testing.T) {
	e := newEcho()
	h, audit := newNewsHandler(t)

	c, rec := jsonRequest(e, http.MethodPatch, "/v1/news/2", `{"title":"Kazan centre opened","tags":[]}`, partner)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := decode[articleResponse](t, rec)
	if got.Title != "Kazan centre opened" || len(got.Tags) != 0 {
		t.Fatalf("patch not applied: %+v", got)
	}
	if len(audit.records) != 1 || audit.records[0].action != domain.ActionEditNews || audit.records[0].details != "Edited news ID:2" {
		t.Fatalf("edit not audited: %+v", audit.records)
	}

	c, _ = jsonRequest(e, http.MethodPatch, "/v1/news/1", `{"title":"hijack"}`, partner)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestNewsHandler_CommentLifecycle(t *testing.T) {
	e := newEcho()
	h, audit := newNewsHandler(t)

	c, rec := jsonRequest(e, http.MethodPost, "/v1/news/1/comments", `{"body":"Any discounts?"}`, client)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.AddComment(c); err != nil {
		t.Fatalf("comment: %v", err)
	}
	added := decode[commentResponse](t, rec)
	if added.State != string(domain.CommentPending) || added.Comment.IsApproved {
		t.Fatalf("client comment should be pending: %+v", added)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/", "", client)
	c.SetParamNames("id", "commentId")
	c.SetParamValues("1", added.Comment.ID)
	if err := h.ApproveComment(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("client approve: expected ErrForbidden, got %v", err)
	}

	c, rec = jsonRequest(e, http.MethodPost, "/", "", admin)
	c.SetParamNames("id", "commentId")
	c.SetParamValues("1", added.Comment.ID)
	if err := h.ApproveComment(c); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := decode[commentResponse](t, rec); got.State != string(domain.CommentApproved) {
		t.Fatalf("expected approved, got %+v", got)
	}

	c, rec = jsonRequest(e, http.MethodDelete, "/", "", admin)
	c.SetParamNames("id", "commentId")
	c.SetParamValues("1", added.Comment.ID)
	if err := h.DeleteComment(c); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %v %d", err, rec.Code)
	}

	c, _ = jsonRequest(e, http.MethodDelete, "/", "", admin)
	c.SetParamNames("id", "commentId")
	c.SetParamValues("1", added.Comment.ID)
	if err := h.DeleteComment(c); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}

	want := []domain.AuditAction{domain.ActionAddComment, domain.ActionApproveComment, domain.ActionDeleteComment}
	if len(audit.records) != len(want) {
		t.Fatalf("expected %d audit records, got %+v", len(want), audit.records)
	}
	for i, a := range want {
		if audit.records[i].action != a {
			t.Fatalf("record %d: got %s want %s", i, audit.records[i].action, a)
		}
	}
}

// --- Admin ---

func TestAdminHandler_AuditLog(t *testing.T) {
	e := newEcho()
	var gotFilter ports.AuditFilter
	audit := &stubAudit{
		listFn: func(_ context.Context, f ports.AuditFilter) ([]domain.AuditLogEntry, error) {
			gotFilter = f
			return nil, nil
		},
	}
	h := NewAdminHandler(audit, stubStats{})

	c, rec := jsonRequest(e, http.MethodGet, "/v1/admin/audit?action=LOGIN&user_id=3&limit=9999", "", admin)
	if err := h.AuditLog(c); err != nil {
		t.Fatalf("audit: %v", err)
	}
	if gotFilter.Action != domain.ActionLogin || gotFilter.UserID != "3" || gotFilter.Limit != maxAuditLimit {
		t.Fatalf("unexpected filter %+v", gotFilter)
	}
	if resp := decode[auditListResponse](t, rec); resp.Items == nil || resp.Total != 0 {
		t.Fatalf("expected empty non-null list, got %s", rec.Body.String())
	}

	for _, bad := range []string{"abc", "-1"} {
		c, _ = jsonRequest(e, http.MethodGet, "/v1/admin/audit?limit="+bad, "", admin)
		if code := httpCode(t, h.AuditLog(c)); code != http.StatusBadRequest {
			t.Fatalf("expected 400 for limit=%s, got %d", bad, code)
		}
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	e := newEcho()
	h := NewAdminHandler(&stubAudit{}, stubStats{})

	c, rec := jsonRequest(e, http.MethodGet, "/v1/admin/stats", "", admin)
	if err := h.Stats(c); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got := decode[domain.SiteStats](t, rec); got.TotalVisits != 10 || len(got.TopPages) != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

// --- Validator ---

func TestValidator_MessagesUseJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&registerRequest{Email: "bad", Username: "", Password: "123"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"email must be a valid email", "username is required", "password must be at least 6 characters"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
	"github.com/metalprofile/corporate-site/internal/core/service"
	redisstore "github.com/metalprofile/corporate-site/internal/infrastructure/db/redis"
	"github.com/metalprofile/corporate-site/internal/infrastructure/memory"
)

type testServer struct {
	t     *testing.T
	srv   http.Handler
	audit *service.AuditService
	users *memory.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	users, news, auditLog := memory.NewUserRepository(), memory.NewNewsRepository(), memory.NewAuditRepository()
	if err := memory.Seed(ctx, users, news, auditLog, service.HashSecret); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := zerolog.Nop()
	identity := service.NewIdentityService(users, redisstore.NewSessionStore(rdb),
		redisstore.NewAttemptLimiter(rdb, 3, time.Minute), "test-secret", time.Hour, log)
	audit := service.NewAuditService(auditLog, nil, log)

	e := NewRouter(Dependencies{
		Identity: identity,
		News:     service.NewNewsService(news, log),
		Audit:    audit,
		Stats:    service.NewStatsService(memory.SeedSiteStats()),
		Redis:    rdb,
		TokenTTL: time.Hour,
		Log:      log,
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{t: t, srv: e, audit: audit, users: users}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.srv.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		s.t.Fatalf("login %s: no token in %s", username, rec.Body.String())
	}
	return resp.Token
}

// addPartner stores a second partner account and logs it in.
func (s *testServer) addPartner(username, email, password string) string {
	s.t.Helper()
	hash, err := service.HashSecret(password)
	if err != nil {
		s.t.Fatalf("hash: %v", err)
	}
	u := &domain.User{ID: "partner-" + username, Email: email, Username: username, Role: domain.RolePartner, CreatedAt: time.Now().UTC()}
	if _, err := s.users.Create(context.Background(), u, domain.Credential{Username: username, SecretHash: hash}); err != nil {
		s.t.Fatalf("create partner: %v", err)
	}
	return s.login(username, password)
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	s := newTestServer(t)

	expect(t, s.do(http.MethodGet, "/health", "", ""), http.StatusOK)
	expect(t, s.do(http.MethodGet, "/health/ready", "", ""), http.StatusOK)
	expect(t, s.do(http.MethodGet, "/v1/news", "", ""), http.StatusOK)
	expect(t, s.do(http.MethodGet, "/v1/news/1", "", ""), http.StatusOK)
	expect(t, s.do(http.MethodGet, "/v1/news/404", "", ""), http.StatusNotFound)
	expect(t, s.do(http.MethodGet, "/metrics", "", ""), http.StatusOK)
}

func TestRouter_GuardsAndRoles(t *testing.T) {
	s := newTestServer(t)

	expect(t, s.do(http.MethodPost, "/v1/news", "", `{"title":"t","body":"b"}`), http.StatusUnauthorized)
	expect(t, s.do(http.MethodGet, "/v1/admin/stats", "", ""), http.StatusUnauthorized)

	clientToken := s.login("client", "client123")
	expect(t, s.do(http.MethodPost, "/v1/news", clientToken, `{"title":"t","body":"b"}`), http.StatusForbidden)
	expect(t, s.do(http.MethodGet, "/v1/admin/audit", clientToken, ""), http.StatusForbidden)
	expect(t, s.do(http.MethodGet, "/auth/me", clientToken, ""), http.StatusOK)

	partnerToken := s.login("partner", "partner123")
	expect(t, s.do(http.MethodPost, "/v1/news", partnerToken, `{"title":"Partner news","body":"Body"}`), http.StatusCreated)
	expect(t, s.do(http.MethodPatch, "/v1/news/1", partnerToken, `{"title":"x"}`), http.StatusForbidden)
	expect(t, s.do(http.MethodGet, "/v1/admin/stats", partnerToken, ""), http.StatusForbidden)

	// The client token died when partner logged in.
	expect(t, s.do(http.MethodGet, "/auth/me", clientToken, ""), http.StatusUnauthorized)
}

func TestRouter_ModerationScenario(t *testing.T) {
	s := newTestServer(t)

	clientToken := s.login("client", "client123")
	rec := s.do(http.MethodPost, "/v1/news/2/comments", clientToken, `{"body":"Is the Kazan centre open on weekends?"}`)
	expect(t, rec, http.StatusCreated)
	var added struct {
		Comment struct {
			ID string `json:"id"`
		} `json:"comment"`
		State string `json:"state"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &added)
	if added.State != "pending_approval" {
		t.Fatalf("client comment should be pending, got %q", added.State)
	}

	approve := "/v1/news/2/comments/" + added.Comment.ID + "/approve"
	expect(t, s.do(http.MethodPost, approve, clientToken, ""), http.StatusForbidden)

	partnerToken := s.login("partner", "partner123")
	expect(t, s.do(http.MethodPost, approve, partnerToken, ""), http.StatusOK)
	expect(t, s.do(http.MethodPost, approve, partnerToken, ""), http.StatusOK)

	del := "/v1/news/2/comments/" + added.Comment.ID
	expect(t, s.do(http.MethodDelete, del, clientToken, ""), http.StatusUnauthorized)

	// A second partner does not own article 2 and may not moderate it.
	otherToken := s.addPartner("partner2", "partner2@metalprofile.ru", "partner456")
	expect(t, s.do(http.MethodDelete, del, otherToken, ""), http.StatusForbidden)
	expect(t, s.do(http.MethodPost, approve, otherToken, ""), http.StatusForbidden)

	partnerToken = s.login("partner", "partner123")
	rec = s.do(http.MethodGet, "/v1/news/2", partnerToken, "")
	expect(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), added.Comment.ID) {
		t.Fatalf("comment should survive the forbidden delete: %s", rec.Body.String())
	}

	expect(t, s.do(http.MethodDelete, del, partnerToken, ""), http.StatusNoContent)
	expect(t, s.do(http.MethodDelete, del, partnerToken, ""), http.StatusNotFound)

	adminToken := s.login("admin", "admin123")
	rec = s.do(http.MethodGet, "/v1/admin/audit?limit=6", adminToken, "")
	expect(t, rec, http.StatusOK)
	var audit struct {
		Items []struct {
			Action string `json:"action"`
		} `json:"items"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &audit)
	want := []string{"LOGIN", "DELETE_COMMENT", "LOGIN", "LOGIN", "APPROVE_COMMENT", "APPROVE_COMMENT"}
	if len(audit.Items) != len(want) {
		t.Fatalf("expected %d entries, got %s", len(want), rec.Body.String())
	}
	for i, a := range want {
		if audit.Items[i].Action != a {
			t.Fatalf("entry %d: got %s want %s", i, audit.Items[i].Action, a)
		}
	}
}

func TestRouter_RegisterLogoutAndThrottle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/register", "", `{"email":"new@example.com","username":"newbie","password":"secret1"}`)
	expect(t, rec, http.StatusCreated)
	var reg struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &reg)

	expect(t, s.do(http.MethodGet, "/auth/me", reg.Token, ""), http.StatusOK)
	expect(t, s.do(http.MethodPost, "/auth/register", "", `{"email":"other@example.com","username":"newbie","password":"secret1"}`), http.StatusConflict)
	expect(t, s.do(http.MethodPost, "/auth/register", "", `{"email":"bad","username":"x","password":"secret1"}`), http.StatusUnprocessableEntity)

	expect(t, s.do(http.MethodPost, "/auth/logout", reg.Token, ""), http.StatusNoContent)
	expect(t, s.do(http.MethodGet, "/auth/me", reg.Token, ""), http.StatusUnauthorized)

	for i := 0; i < 3; i++ {
		expect(t, s.do(http.MethodPost, "/auth/login", "", `{"username":"admin","password":"wrong"}`), http.StatusUnauthorized)
	}
	expect(t, s.do(http.MethodPost, "/auth/login", "", `{"username":"admin","password":"admin123"}`), http.StatusTooManyRequests)

	entries, _ := s.audit.List(context.Background(), ports.AuditFilter{Action: domain.ActionRegister})
	if len(entries) != 1 || entries[0].Username != "newbie" || entries[0].UserID == "" {
		t.Fatalf("registration should be audited with the new id: %+v", entries)
	}
}

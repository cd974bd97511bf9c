package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

// IdentityService implements registration, login and the single session of
// the running instance.
type IdentityService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	limiter   ports.AttemptLimiter
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string

	mu      sync.RWMutex
	current *domain.User
}

// NewIdentityService wires the identity store. limiter may be nil, in which
// case failed logins are not throttled.
func NewIdentityService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	limiter ports.AttemptLimiter,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &IdentityService{
		users:     users,
		sessions:  sessions,
		limiter:   limiter,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// HashSecret hashes a login secret for storage in a Credential.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func (s *IdentityService) Login(ctx context.Context, username, secret string) (*domain.User, error) {
	if username == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allowed(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("attempt limiter check failed, continuing")
		} else if !ok {
			return nil, domain.ErrTooManyAttempts
		}
	}

	cred, err := s.users.Credential(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.SecretHash), []byte(secret)) != nil {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login attempts")
		}
	}

	s.setSession(ctx, user)
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user logged in")
	return cloneUser(user), nil
}

func (s *IdentityService) recordFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login attempt")
	}
}

// Register creates a client account and logs it in.
func (s *IdentityService) Register(ctx context.Context, email, username, secret string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	switch {
	case email == "":
		return nil, domain.Invalid("email", "is required")
	case username == "":
		return nil, domain.Invalid("username", "is required")
	case secret == "":
		return nil, domain.Invalid("password", "is required")
	}

	hash, err := HashSecret(secret)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        s.newID(),
		Email:     email,
		Username:  username,
		Role:      domain.RoleClient,
		CreatedAt: s.now(),
	}
	created, err := s.users.Create(ctx, user, domain.Credential{Username: username, SecretHash: hash})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.setSession(ctx, created)
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return cloneUser(created), nil
}

func (s *IdentityService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

func (s *IdentityService) RestoreSession(ctx context.Context) (*domain.User, error) {
	user, err := s.sessions.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoSession) {
			s.log.Warn().Err(err).Msg("discarding unreadable session snapshot")
			if clearErr := s.sessions.Clear(ctx); clearErr != nil {
				s.log.Warn().Err(clearErr).Msg("failed to clear persisted session")
			}
		}
		return nil, domain.ErrNoSession
	}

	s.mu.Lock()
	s.current = cloneUser(user)
	s.mu.Unlock()

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("session restored")
	return cloneUser(user), nil
}

func (s *IdentityService) Current(_ context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, domain.ErrNoSession
	}
	return cloneUser(s.current), nil
}

// setSession replaces the session user. A failure to persist the snapshot
// only costs a re-login after restart, so it is logged and ignored.
func (s *IdentityService) setSession(ctx context.Context, user *domain.User) {
	s.mu.Lock()
	s.current = cloneUser(user)
	s.mu.Unlock()

	if err := s.sessions.Save(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to persist session")
	}
}

func (s *IdentityService) IssueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role.String(),
		"exp":      s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// VerifyToken accepts a token only while it names the current session user;
// logging out or logging in as someone else invalidates earlier tokens.
func (s *IdentityService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrNoSession
	}

	sub, _ := claims["sub"].(string)
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sub == "" || sub != current.ID {
		return nil, domain.ErrNoSession
	}
	return current, nil
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

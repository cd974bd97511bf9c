package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// SessionKey is the fixed key holding the session user snapshot.
const SessionKey = "user"

// SessionStore persists the session user as a JSON document under SessionKey.
type SessionStore struct {
	client *redis.Client
	key    string
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, key: SessionKey}
}

func (s *SessionStore) Save(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns ErrNoSession when the key is absent and a decode error when
// the stored snapshot is unreadable.
func (s *SessionStore) Load(ctx context.Context) (*domain.User, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if user.ID == "" || !user.Role.Valid() {
		return nil, fmt.Errorf("decode session: incomplete user record")
	}
	return &user, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

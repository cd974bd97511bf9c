package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed logins per username in a fixed window.
// Key format: login_attempts:<username>
type AttemptLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewAttemptLimiter blocks a username after max failures until window
// elapses from the first failure.
func NewAttemptLimiter(client *redis.Client, max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{client: client, max: max, window: window}
}

// Allowed reports whether another login attempt may be made for username.
func (l *AttemptLimiter) Allowed(ctx context.Context, username string) (bool, error) {
	if l.max <= 0 {
		return true, nil
	}
	n, err := l.client.Get(ctx, l.key(username)).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, fmt.Errorf("attempt check: %w", err)
	}
	return n < l.max, nil
}

// Fail records a failed attempt; the first failure starts the window.
func (l *AttemptLimiter) Fail(ctx context.Context, username string) error {
	key := l.key(username)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("attempt record: %w", err)
	}
	if n == 1 {
		return l.client.Expire(ctx, key, l.window).Err()
	}
	return nil
}

// Reset forgets the failures of username.
func (l *AttemptLimiter) Reset(ctx context.Context, username string) error {
	return l.client.Del(ctx, l.key(username)).Err()
}

func (l *AttemptLimiter) key(username string) string {
	return fmt.Sprintf("login_attempts:%s", username)
}

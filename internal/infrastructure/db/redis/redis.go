package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	expireTick     = time.Second
)

// Config captures the settings for establishing a Redis connection. When
// Embedded is set an in-process server is started instead of dialling Addr.
// SnapshotPath, if set, makes the embedded server's string keys survive a
// restart: they are loaded on Connect and written back on Close.
type Config struct {
	Addr         string
	DB           int
	Timeout      time.Duration
	Embedded     bool
	SnapshotPath string
}

// Conn is a connected client plus the embedded server backing it, if any.
type Conn struct {
	Client   *redis.Client
	embedded *miniredis.Miniredis
	db       int
	snapshot string
	stop     chan struct{}
}

// Embedded reports whether the client talks to the in-process server.
func (c *Conn) Embedded() bool { return c.embedded != nil }

// Durable reports whether the embedded server persists its keys to disk.
func (c *Conn) Durable() bool { return c.embedded != nil && c.snapshot != "" }

// Close closes the client. An embedded server dumps its snapshot, if one is
// configured, and is then stopped.
func (c *Conn) Close() error {
	err := c.Client.Close()
	if c.embedded != nil {
		close(c.stop)
		if c.snapshot != "" {
			err = errors.Join(err, dumpSnapshot(c.embedded.DB(c.db), c.snapshot))
		}
		c.embedded.Close()
	}
	return err
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*Conn, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	conn := &Conn{db: cfg.DB}
	addr := cfg.Addr
	if cfg.Embedded {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		if cfg.SnapshotPath != "" {
			if err := loadSnapshot(mr.DB(cfg.DB), cfg.SnapshotPath); err != nil {
				mr.Close()
				return nil, err
			}
		}
		conn.embedded = mr
		conn.snapshot = cfg.SnapshotPath
		conn.stop = make(chan struct{})
		go expireLoop(mr, conn.stop)
		addr = mr.Addr()
	} else if addr == "" {
		return nil, errors.New("redis: address is required unless embedded mode is enabled")
	}

	conn.Client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := conn.Client.Ping(pingCtx).Err(); err != nil {
		_ = conn.Client.Close()
		if conn.embedded != nil {
			close(conn.stop)
			conn.embedded.Close()
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return conn, nil
}

// expireLoop advances the embedded server's clock so TTLs elapse in real time;
// miniredis only expires keys when told time has passed.
func expireLoop(mr *miniredis.Miniredis, stop <-chan struct{}) {
	ticker := time.NewTicker(expireTick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			mr.FastForward(expireTick)
		}
	}
}

type snapshotEntry struct {
	Value string        `json:"value"`
	TTL   time.Duration `json:"ttl,omitempty"`
}

func loadSnapshot(db *miniredis.RedisDB, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read redis snapshot: %w", err)
	}

	var entries map[string]snapshotEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("decode redis snapshot %s: %w", path, err)
	}
	for key, e := range entries {
		if err := db.Set(key, e.Value); err != nil {
			return fmt.Errorf("restore key %s: %w", key, err)
		}
		if e.TTL > 0 {
			db.SetTTL(key, e.TTL)
		}
	}
	return nil
}

// dumpSnapshot writes every string key with its remaining TTL. Keys of other
// types are not used by the embedded deployment and are skipped.
func dumpSnapshot(db *miniredis.RedisDB, path string) error {
	entries := make(map[string]snapshotEntry)
	for _, key := range db.Keys() {
		if db.Type(key) != "string" {
			continue
		}
		v, err := db.Get(key)
		if err != nil {
			return fmt.Errorf("snapshot key %s: %w", key, err)
		}
		entries[key] = snapshotEntry{Value: v, TTL: db.TTL(key)}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode redis snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write redis snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace redis snapshot: %w", err)
	}
	return nil
}

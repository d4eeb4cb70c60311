package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrClosed is returned by a store that has been closed.
var ErrClosed = errors.New("cache: store closed")

// Store is a byte cache with per-entry expiry.
type Store interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge removes expired entries and returns how many were dropped.
	Purge(ctx context.Context) (int64, error)
	Close() error
}

// sweepEvery is the number of writes between automatic purges of the
// memory and SQLite stores. Keys that are never read again would
// otherwise stay forever.
const sweepEvery = 128

// Key builds a cache key from a function name and its arguments.
func Key(fn string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, fn)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}

// Config selects and configures a backend.
type Config struct {
	Backend    string // memory, sqlite or redis
	SQLitePath string
	Redis      RedisConfig
}

// New opens the configured backend.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "redis":
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

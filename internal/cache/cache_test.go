package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	got := Key("bars", "AAPL", "5m", "5d")
	if got != "bars|AAPL|5m|5d" {
		t.Errorf("unexpected key %q", got)
	}
	if Key("gainers", 100) != "gainers|100" {
		t.Errorf("non-string args should be formatted, got %q", Key("gainers", 100))
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	if err := s.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetBytes(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	b, ok, err := s.GetBytes(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("expected hit, got %q %v %v", b, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.GetBytes(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
	if s.size() != 1 {
		t.Errorf("expired entry should be evicted on read, len=%d", s.size())
	}
	if _, ok, _ := s.GetBytes(ctx, "forever"); !ok {
		t.Error("zero ttl entry should not expire")
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Close()
	if _, _, err := s.GetBytes(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on get, got %v", err)
	}
	if err := s.SetBytes(ctx, "k", nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on set, got %v", err)
	}
}

func TestSQLiteStore_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, ok, err := s.GetBytes(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := s.SetBytes(ctx, "k", []byte("one"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetBytes(ctx, "k", []byte("two"), time.Minute); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, ok, err := s.GetBytes(ctx, "k")
	if err != nil || !ok || string(b) != "two" {
		t.Fatalf("expected overwritten value, got %q %v %v", b, ok, err)
	}

	if err := s.SetBytes(ctx, "other", []byte("x"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(2 * time.Minute)
	n, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged rows, got %d", n)
	}
	if _, ok, _ := s.GetBytes(ctx, "k"); ok {
		t.Error("entry should be gone after purge")
	}
}

func TestNew_Backends(t *testing.T) {
	s, err := New(Config{})
	if err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("default backend should be memory, got %T", s)
	}
	if _, err := New(Config{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := New(Config{Backend: "redis"}); err == nil {
		t.Error("redis without addr should fail")
	}
}

func TestMemoryStore_SweepsUnreadExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	s.sweepEvery = 4

	for i := 0; i < 3; i++ {
		if err := s.SetBytes(ctx, fmt.Sprintf("quote|%d", i), []byte("x"), time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	now = now.Add(5 * time.Minute)
	// The fourth write triggers a sweep of the three stale quotes.
	if err := s.SetBytes(ctx, "fresh", []byte("y"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.size() != 1 {
		t.Errorf("expected only the fresh entry to remain, len=%d", s.size())
	}
}

func TestSQLiteStore_SweepsUnreadExpiredKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.sweepEvery = 4

	for i := 0; i < 3; i++ {
		if err := s.SetBytes(ctx, fmt.Sprintf("quote|%d", i), []byte("x"), time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	now = now.Add(5 * time.Minute)
	if err := s.SetBytes(ctx, "fresh", []byte("y"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var rows int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache_entries").Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected stale rows to be swept, got %d rows", rows)
	}
}

func TestNew_SQLiteCreatesMissingDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "cache.db")
	s, err := New(Config{Backend: "sqlite", SQLitePath: path})
	if err != nil {
		t.Fatalf("open under missing dir: %v", err)
	}
	defer s.Close()
	if err := s.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if b, ok, err := s.GetBytes(ctx, "k"); err != nil || !ok || string(b) != "v" {
		t.Fatalf("expected hit, got %q %v %v", b, ok, err)
	}
}

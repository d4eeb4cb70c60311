package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v   []byte
	exp time.Time
}

// MemoryStore is an in-process TTL map.
type MemoryStore struct {
	mu         sync.RWMutex
	m          map[string]entry
	now        func() time.Time
	closed     bool
	writes     int
	sweepEvery int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]entry), now: time.Now, sweepEvery: sweepEvery}
}

func (c *MemoryStore) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, false, ErrClosed
	}
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

// SetBytes stores value; a ttl <= 0 never expires.
func (c *MemoryStore) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.m[key] = entry{v: value, exp: exp}
	c.writes++
	if c.sweepEvery > 0 && c.writes%c.sweepEvery == 0 {
		c.purgeLocked()
	}
	return nil
}

func (c *MemoryStore) Purge(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.purgeLocked(), nil
}

func (c *MemoryStore) purgeLocked() int64 {
	now := c.now()
	var n int64
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

// size returns the number of stored entries, expired ones included.
func (c *MemoryStore) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *MemoryStore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.m = map[string]entry{}
	return nil
}

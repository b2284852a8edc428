package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	v       any
	fetched time.Time
}

// TTLCache is an in-process read-through cache with a per-call TTL and a
// stale fallback: when a refresh fails and a stale value exists, the stale
// value is preferred over no data. It is constructed and owned by whoever
// composes the pipeline and passed by reference, never reached for as a
// singleton.
type TTLCache struct {
	mu    sync.Mutex
	m     map[string]entry
	clock clockwork.Clock
}

func NewTTLCache() *TTLCache {
	return NewTTLCacheWithClock(clockwork.NewRealClock())
}

// NewTTLCacheWithClock allows tests to freeze time with a fake clock.
func NewTTLCacheWithClock(clock clockwork.Clock) *TTLCache {
	return &TTLCache{
		m:     make(map[string]entry),
		clock: clock,
	}
}

// GetOrRefresh returns the cached value for key when it is younger than ttl;
// otherwise it calls refresh and caches the result. A failed refresh returns
// the stale value (and a nil error) when one exists, and the refresh error
// only when the cache holds nothing at all.
func (c *TTLCache) GetOrRefresh(key string, ttl time.Duration, refresh func() (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.m[key]
	c.mu.Unlock()

	if ok && c.clock.Since(e.fetched) < ttl {
		return e.v, nil
	}

	v, err := refresh()
	if err != nil {
		if ok {
			return e.v, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.m[key] = entry{v: v, fetched: c.clock.Now()}
	c.mu.Unlock()
	return v, nil
}

// Peek returns the cached value regardless of age.
func (c *TTLCache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	return e.v, true
}

// Invalidate drops a key so the next read refreshes.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

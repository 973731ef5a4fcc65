package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
)

// maxMemoryTTL bounds how long any key lives, including keys set without an expiration.
const maxMemoryTTL = 24 * time.Hour

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is a bounded in-process CacheProvider used when Redis is not configured
type MemoryAdapter struct {
	mu    sync.Mutex
	lru   *expirable.LRU[string, memoryEntry]
	clock func() time.Time
}

// NewMemoryAdapter creates an in-memory cache holding at most size keys
func NewMemoryAdapter(size int) *MemoryAdapter {
	if size <= 0 {
		size = 10000
	}
	return &MemoryAdapter{
		lru:   expirable.NewLRU[string, memoryEntry](size, nil, maxMemoryTTL),
		clock: time.Now,
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.live(key)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lru.Add(key, memoryEntry{value: append([]byte(nil), value...), expiresAt: a.expiry(expirationSeconds)})
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lru.Remove(key)
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.live(key)
	return ok, nil
}

// Incr increments a counter. The expiration is only set when the counter is created.
func (a *MemoryAdapter) Incr(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.live(key)
	var n int64
	if ok {
		n, _ = strconv.ParseInt(string(entry.value), 10, 64)
	} else {
		entry.expiresAt = a.expiry(expirationSeconds)
	}
	n++
	entry.value = []byte(strconv.FormatInt(n, 10))
	a.lru.Add(key, entry)
	return n, nil
}

// live returns the entry for key unless it has passed its own expiration. Callers hold mu.
func (a *MemoryAdapter) live(key string) (memoryEntry, bool) {
	entry, ok := a.lru.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !a.clock().Before(entry.expiresAt) {
		a.lru.Remove(key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (a *MemoryAdapter) expiry(expirationSeconds int) time.Time {
	if expirationSeconds <= 0 {
		return time.Time{}
	}
	return a.clock().Add(time.Duration(expirationSeconds) * time.Second)
}

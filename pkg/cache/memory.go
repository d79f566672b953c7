package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// entry хранимое значение с моментом истечения и последнего доступа
type entry struct {
	value      []byte
	expiresAt  time.Time
	accessedAt time.Time
	size       int64
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache потокобезопасный in-memory кэш с TTL, вытеснением по
// давности доступа и фоновой очисткой истёкших записей. Значения
// копируются на входе и выходе, чтобы вызывающий не мог изменить
// закэшированное решение.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	defaultTTL time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
	closed atomic.Bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewMemoryCache создаёт кэш и запускает фоновую очистку.
func NewMemoryCache(opts *Options) *MemoryCache {
	if opts == nil {
		opts = DefaultOptions()
	}

	c := &MemoryCache{
		entries:    make(map[string]*entry),
		defaultTTL: opts.DefaultTTL,
		maxEntries: opts.MaxEntries,
		stopCh:     make(chan struct{}),
	}

	interval := opts.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}

	c.wg.Add(1)
	go c.cleanupLoop(interval)

	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	now := time.Now()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.expired(now) {
		if ok {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, ErrKeyNotFound
	}

	e.accessedAt = now
	val := make([]byte, len(e.value))
	copy(val, e.value)
	c.mu.Unlock()

	c.hits.Add(1)
	return val, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	now := time.Now()
	e := &entry{
		value:      stored,
		accessedAt: now,
		size:       int64(len(stored)),
	}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 {
		for len(c.entries) >= c.maxEntries {
			c.evictOldest()
		}
	}

	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}

	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	return ok && !e.expired(now), nil
}

// DeleteByPattern удаляет все живые ключи по шаблону. Поддерживается
// одна звёздочка: "prefix*", "*suffix", "prefix*suffix" или "*".
func (c *MemoryCache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrCacheClosed
	}

	now := time.Now()
	var deleted int64

	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			continue
		}
		if matchPattern(pattern, key) {
			delete(c.entries, key)
			deleted++
		}
	}
	c.mu.Unlock()

	return deleted, nil
}

func (c *MemoryCache) Stats(ctx context.Context) (*Stats, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	hits := c.hits.Load()
	misses := c.misses.Load()

	stats := &Stats{
		Hits:         hits,
		Misses:       misses,
		KeysByPrefix: make(map[string]int64),
		Backend:      BackendMemory,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}

	now := time.Now()

	c.mu.RLock()
	for key, e := range c.entries {
		if e.expired(now) {
			continue
		}
		stats.TotalKeys++
		stats.MemoryBytes += e.size
		stats.KeysByPrefix[keyPrefix(key)]++
	}
	c.mu.RUnlock()

	return stats, nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	return nil
}

// Close останавливает фоновую очистку. Повторный вызов безопасен.
func (c *MemoryCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.stopCh)
	c.wg.Wait()

	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
	return nil
}

// evictOldest удаляет запись с самым давним доступом. Вызывается под
// блокировкой записи.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.accessedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.accessedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// matchPattern сверяет ключ с шаблоном, содержащим не более одной "*".
func matchPattern(pattern, key string) bool {
	if pattern == "*" {
		return true
	}

	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == key
	}

	prefix, suffix := pattern[:star], pattern[star+1:]
	return len(key) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(key, prefix) &&
		strings.HasSuffix(key, suffix)
}

// keyPrefix возвращает часть ключа до первого ":" для группировки в
// статистике ("solve" для ключей решений).
func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

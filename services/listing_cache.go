package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
	"github.com/sahilchouksey/degreefyd-api/utils/cache"
)

// ListingCache stores public listing pages. Invalidate must make every
// previously stored page unreachable.
//
// Get reports the cache version it looked under, hit or miss. Set stores
// under that version, so a page computed before an Invalidate is never
// readable after it.
type ListingCache interface {
	Get(ctx context.Context, key string) (page catalog.Page, version string, ok bool)
	Set(ctx context.Context, key, version string, page catalog.Page)
	Invalidate(ctx context.Context)
}

const listingVersionKey = "catalog:listing:version"

// RedisListingCache keys pages by a version counter so one INCR drops every
// cached page without scanning keys.
type RedisListingCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewRedisListingCache(c *cache.RedisCache, ttl time.Duration) *RedisListingCache {
	return &RedisListingCache{cache: c, ttl: ttl}
}

func (r *RedisListingCache) version(ctx context.Context) (string, error) {
	v, err := r.cache.Get(ctx, listingVersionKey)
	if errors.Is(err, cache.ErrNotFound) {
		return "0", nil
	}
	return v, err
}

func pageKey(version, key string) string {
	return fmt.Sprintf("catalog:listing:v%s:%s", version, key)
}

func (r *RedisListingCache) Get(ctx context.Context, key string) (catalog.Page, string, bool) {
	v, err := r.version(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("listing cache unavailable")
		return catalog.Page{}, "", false
	}
	var page catalog.Page
	if err := r.cache.GetJSON(ctx, pageKey(v, key), &page); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.Warn().Err(err).Msg("listing cache read failed")
		}
		return catalog.Page{}, v, false
	}
	return page, v, true
}

// Set writes under the version the caller read. A stale version leaves the
// page under a key no reader builds any more; it expires with the TTL.
func (r *RedisListingCache) Set(ctx context.Context, key, version string, page catalog.Page) {
	if version == "" {
		return
	}
	if err := r.cache.SetJSON(ctx, pageKey(version, key), page, r.ttl); err != nil {
		log.Warn().Err(err).Msg("listing cache write failed")
	}
}

func (r *RedisListingCache) Invalidate(ctx context.Context) {
	if _, err := r.cache.Increment(ctx, listingVersionKey); err != nil {
		log.Warn().Err(err).Msg("listing cache invalidation failed")
	}
}

// MemoryListingCache is the in-process cache used without Redis. Expired
// entries are dropped on read and swept at most once per TTL on write.
type MemoryListingCache struct {
	ttl       time.Duration
	now       func() time.Time
	version   int64
	entries   map[string]memoryEntry
	nextSweep time.Time
	mu        sync.Mutex
}

type memoryEntry struct {
	page    catalog.Page
	expires time.Time
}

func NewMemoryListingCache(ttl time.Duration) *MemoryListingCache {
	return &MemoryListingCache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]memoryEntry{},
	}
}

func (m *MemoryListingCache) Get(_ context.Context, key string) (catalog.Page, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version := strconv.FormatInt(m.version, 10)
	e, ok := m.entries[key]
	if !ok {
		return catalog.Page{}, version, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return catalog.Page{}, version, false
	}
	return clonePage(e.page), version, true
}

// Set drops pages computed under an older version
func (m *MemoryListingCache) Set(_ context.Context, key, version string, page catalog.Page) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if version != strconv.FormatInt(m.version, 10) {
		return
	}
	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(m.ttl)
	}
	m.entries[key] = memoryEntry{page: clonePage(page), expires: now.Add(m.ttl)}
}

// sweep must be called with the lock held
func (m *MemoryListingCache) sweep(now time.Time) {
	for k, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, k)
		}
	}
}

func (m *MemoryListingCache) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version++
	m.entries = map[string]memoryEntry{}
}

// Len returns the number of entries held, expired or not
func (m *MemoryListingCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func clonePage(p catalog.Page) catalog.Page {
	data := make([]model.College, len(p.Data))
	for i := range p.Data {
		data[i] = p.Data[i].Clone()
	}
	p.Data = data
	return p
}

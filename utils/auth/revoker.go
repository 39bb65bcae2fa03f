package auth

import (
	"context"
	"sync"
	"time"

	"github.com/sahilchouksey/degreefyd-api/utils/cache"
)

// Revoker remembers revoked token ids until the tokens would have expired
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "auth:revoked:"

// RedisRevoker stores revocations as expiring Redis keys
type RedisRevoker struct {
	cache *cache.RedisCache
}

func NewRedisRevoker(c *cache.RedisCache) *RedisRevoker {
	return &RedisRevoker{cache: c}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedKeyPrefix+jti, "1", ttl)
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.cache.Exists(ctx, revokedKeyPrefix+jti)
}

// MemoryRevoker is used when Redis is not configured. Call Prune
// periodically to drop entries of expired tokens.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = expiresAt
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.revoked[jti]
	return ok && m.now().Before(expiresAt), nil
}

// Prune removes entries whose tokens have expired and returns how many
func (m *MemoryRevoker) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	pruned := 0
	for jti, expiresAt := range m.revoked {
		if !now.Before(expiresAt) {
			delete(m.revoked, jti)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of tracked revocations
func (m *MemoryRevoker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.revoked)
}

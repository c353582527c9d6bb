package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker tracks revoked token ids until the token would have expired
// anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Claim revokes tokenID and reports whether this call did so. Of several
	// concurrent claims on the same id exactly one returns true.
	Claim(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
}

// MemoryRevoker keeps revoked ids in process memory. Suitable for a single
// instance only.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty MemoryRevoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke implements TokenRevoker.Revoke. Already-expired tokens are ignored.
func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !expiresAt.After(now) {
		return nil
	}
	r.revoked[tokenID] = expiresAt
	r.sweep(now)
	return nil
}

// Claim implements TokenRevoker.Claim
func (r *MemoryRevoker) Claim(_ context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if exp, ok := r.revoked[tokenID]; ok && exp.After(now) {
		return false, nil
	}
	if !expiresAt.After(now) {
		return false, nil
	}
	r.revoked[tokenID] = expiresAt
	r.sweep(now)
	return true, nil
}

// sweep drops expired entries so the map does not grow without bound.
// Callers hold r.mu.
func (r *MemoryRevoker) sweep(now time.Time) {
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
		}
	}
}

// IsRevoked implements TokenRevoker.IsRevoked
func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.After(r.now()) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// RedisRevoker stores revoked ids in Redis keys that expire with the token.
type RedisRevoker struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisRevoker creates a RedisRevoker on an existing client.
func NewRedisRevoker(client redis.UniversalClient) *RedisRevoker {
	return &RedisRevoker{client: client, now: time.Now}
}

// Revoke implements TokenRevoker.Revoke
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err()
}

// IsRevoked implements TokenRevoker.IsRevoked
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Claim implements TokenRevoker.Claim with a single SET NX.
func (r *RedisRevoker) Claim(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return false, nil
	}
	return r.client.SetNX(ctx, revocationKey(tokenID), "1", ttl).Result()
}

func revocationKey(tokenID string) string {
	return "revoked:" + tokenID
}

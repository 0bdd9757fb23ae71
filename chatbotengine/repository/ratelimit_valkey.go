package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/zapedidos/zapedidos/infrastructure/valkey"
)

// ValkeyRateLimitStore implements domain.RateLimitStore on a shared Valkey,
// so the fixed window is consistent across server nodes. INCR gives the
// atomic increment-and-get; EXPIRE NX bounds the window.
type ValkeyRateLimitStore struct {
	client *valkey.Client
	prefix string
}

func NewValkeyRateLimitStore(client *valkey.Client) *ValkeyRateLimitStore {
	return &ValkeyRateLimitStore{
		client: client,
		prefix: client.Key("ratelimit") + ":",
	}
}

func (s *ValkeyRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := s.prefix + key
	inner := s.client.Inner()

	count, err := inner.Do(ctx, inner.B().Incr().Key(fullKey).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	// EXPIRE NX on every hit, not just the first: if a crash lands between
	// the INCR and this call, the next hit repairs the missing TTL instead
	// of leaving the key, and its rate limit, in place forever.
	seconds := int64(window / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	if err := inner.Do(ctx, inner.B().Expire().Key(fullKey).Seconds(seconds).Nx().Build()).Error(); err != nil {
		return count, fmt.Errorf("failed to set rate counter expiry: %w", err)
	}

	return count, nil
}

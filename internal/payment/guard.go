package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CallbackTTL is how long a processed callback is remembered.
const CallbackTTL = 48 * time.Hour

// CallbackGuard deduplicates provider callbacks by transaction id.
type CallbackGuard interface {
	// Claim returns false when key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so the provider's retry can be processed.
	Release(ctx context.Context, key string) error
}

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard returns a guard backed by SET NX with CallbackTTL.
func NewRedisGuard(client *redis.Client) CallbackGuard {
	return &redisGuard{client: client, ttl: CallbackTTL}
}

func guardKey(key string) string {
	return fmt.Sprintf("payment:callback:%s", key)
}

func (g *redisGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKey(key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (g *redisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, guardKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

type noopGuard struct{}

// NewNoopGuard returns a guard that claims every key.
func NewNoopGuard() CallbackGuard {
	return noopGuard{}
}

func (noopGuard) Claim(context.Context, string) (bool, error) { return true, nil }
func (noopGuard) Release(context.Context, string) error       { return nil }

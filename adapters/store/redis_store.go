package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// RedisStore is a Redis implementation of the server-side Store and
// NonceStore interfaces.
type RedisStore struct {
	client         *redis.Client
	revokedPrefix  string
	noncePrefix    string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:        client,
		revokedPrefix: "herald:invalidated:",
		noncePrefix:   "herald:nonce:",
	}
}

// InvalidateToken marks a token as invalidated in Redis
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	key := s.revokedPrefix + tokenID
	if err := s.client.Set(ctx, key, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	key := s.revokedPrefix + tokenID
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	return val > 0, nil
}

// Put stores a login nonce for an address with a TTL.
func (s *RedisStore) Put(ctx context.Context, address string, challenge core.Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to encode nonce: %w", err)
	}
	key := s.noncePrefix + core.NormalizeAddress(address)
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// Get returns the stored nonce for an address without consuming it.
func (s *RedisStore) Get(ctx context.Context, address string) (core.Challenge, bool, error) {
	key := s.noncePrefix + core.NormalizeAddress(address)
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return core.Challenge{}, false, nil
	}
	if err != nil {
		return core.Challenge{}, false, fmt.Errorf("failed to read nonce: %w", err)
	}
	return decodeChallenge(val)
}

// Take returns the stored nonce and deletes it atomically.
func (s *RedisStore) Take(ctx context.Context, address string) (core.Challenge, bool, error) {
	key := s.noncePrefix + core.NormalizeAddress(address)
	val, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return core.Challenge{}, false, nil
	}
	if err != nil {
		return core.Challenge{}, false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return decodeChallenge(val)
}

func decodeChallenge(val string) (core.Challenge, bool, error) {
	var challenge core.Challenge
	if err := json.Unmarshal([]byte(val), &challenge); err != nil {
		return core.Challenge{}, false, fmt.Errorf("failed to decode nonce: %w", err)
	}
	return challenge, true, nil
}

var (
	_ ports.Store      = (*RedisStore)(nil)
	_ ports.NonceStore = (*RedisStore)(nil)
)

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// Fixed keys under which a console session persists its authentication state.
const (
	KeyToken = "jwtToken"
	KeyUser  = "user"
)

// keysPerSession is the number of values one session occupies in a store.
const keysPerSession = 2

// SessionRepository persists per-session values.
type SessionRepository interface {
	Get(ctx context.Context, sessionID, key string, dest interface{}) error
	Set(ctx context.Context, sessionID, key string, value interface{}) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
}

func sessionKey(sessionID, key string) string {
	return fmt.Sprintf("console:session:%s:%s", sessionID, key)
}

// RedisSessionRepository stores session values as JSON in Redis.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionRepository constructs a Redis-backed session repository.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionRepository{client: client, ttl: ttl, logger: logger}
}

// Get retrieves and unmarshals the stored value into dest.
func (r *RedisSessionRepository) Get(ctx context.Context, sessionID, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, sessionKey(sessionID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return appErrors.Wrap(fmt.Errorf("redis get %s: %w", key, err), appErrors.ErrSessionStore.Code, appErrors.ErrSessionStore.Status, appErrors.ErrSessionStore.Message)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal session value %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it with the session TTL.
func (r *RedisSessionRepository) Set(ctx context.Context, sessionID, key string, value interface{}) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal session value %s: %w", key, err)
	}

	if err := r.client.Set(ctx, sessionKey(sessionID, key), payload, r.ttl).Err(); err != nil {
		return appErrors.Wrap(fmt.Errorf("redis set %s: %w", key, err), appErrors.ErrSessionStore.Code, appErrors.ErrSessionStore.Status, appErrors.ErrSessionStore.Message)
	}
	return nil
}

// Delete removes the given keys of a session.
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if r.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, sessionKey(sessionID, key))
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return appErrors.Wrap(fmt.Errorf("redis delete session %s: %w", sessionID, err), appErrors.ErrSessionStore.Code, appErrors.ErrSessionStore.Status, appErrors.ErrSessionStore.Message)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisSessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// MemorySessionRepository keeps session values in a bounded in-process cache.
type MemorySessionRepository struct {
	entries *expirable.LRU[string, []byte]
}

// NewMemorySessionRepository constructs an in-memory repository holding the
// values of at most sessions sessions.
func NewMemorySessionRepository(sessions int, ttl time.Duration) *MemorySessionRepository {
	if sessions <= 0 {
		sessions = 1024
	}
	return &MemorySessionRepository{entries: expirable.NewLRU[string, []byte](sessions*keysPerSession, nil, ttl)}
}

// Get retrieves and unmarshals the stored value into dest.
func (r *MemorySessionRepository) Get(_ context.Context, sessionID, key string, dest interface{}) error {
	raw, ok := r.entries.Get(sessionKey(sessionID, key))
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal session value %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it, resetting its expiry.
func (r *MemorySessionRepository) Set(_ context.Context, sessionID, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal session value %s: %w", key, err)
	}
	r.entries.Add(sessionKey(sessionID, key), payload)
	return nil
}

// Delete removes the given keys of a session.
func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string, keys ...string) error {
	for _, key := range keys {
		r.entries.Remove(sessionKey(sessionID, key))
	}
	return nil
}

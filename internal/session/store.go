package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds server-side session markers. A marker that is gone, expired or
// deleted means the session is over regardless of what tokens are still in
// the wild.
type Store interface {
	Put(ctx context.Context, id string, ttl time.Duration) error
	Active(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

const redisKeyPrefix = "session:"

// RedisStore keeps markers in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put writes a marker that expires with the session.
func (s *RedisStore) Put(ctx context.Context, id string, ttl time.Duration) error {
	return s.client.Set(ctx, redisKeyPrefix+id, "1", ttl).Err()
}

// Active reports whether the marker still exists.
func (s *RedisStore) Active(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the marker, ending the session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}

// InMemory is a map-backed store for dev and testing.
type InMemory struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{expires: make(map[string]time.Time)}
}

// Put writes a marker.
func (s *InMemory) Put(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[id] = time.Now().Add(ttl)
	return nil
}

// Active reports whether the marker exists and has not expired.
func (s *InMemory) Active(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[id]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(s.expires, id)
		return false, nil
	}
	return true, nil
}

// Delete removes the marker.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, id)
	return nil
}

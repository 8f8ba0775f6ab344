package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore is durable string storage. Get reports a missing key as
// ok == false rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStore(redisClient *redis.Client) KeyValueStore {
	return &redisStore{
		redisClient: redisClient,
		keyPrefix:   "storefront:state:",
	}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get state %s: %w", key, err)
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	err := s.redisClient.Set(ctx, s.keyPrefix+key, value, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set state %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore is the in-process store used when redis is not configured
// and in tests.
func NewMemoryStore() KeyValueStore {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

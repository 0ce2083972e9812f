package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjaylee/contentforge/internal/domain/repositories"
)

// Usage keys embed the UTC date, so a period rollover is just a key rollover:
// yesterday's counter is never read again and expires on its own. Admission
// reserves with INCR and rolls an over-limit claim back with DECR, which is
// what makes check-then-consume atomic across processes.
const usageKeyTTL = 48 * time.Hour

type redisUsageStore struct {
	client *RedisClient
}

func NewUsageStore(client *RedisClient) repositories.UsageStore {
	return &redisUsageStore{client: client}
}

func usageKey(identity string, day time.Time) string {
	return fmt.Sprintf("usage:%s:%s", identity, day.UTC().Format("2006-01-02"))
}

func (s *redisUsageStore) Get(ctx context.Context, identity string, day time.Time) (int64, error) {
	count, err := s.client.Client.Get(ctx, usageKey(identity, day)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read usage counter: %w", err)
	}
	return count, nil
}

func (s *redisUsageStore) Increment(ctx context.Context, identity string, day time.Time) (int64, error) {
	key := usageKey(identity, day)

	count, err := s.client.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage counter: %w", err)
	}
	if count == 1 {
		s.client.Client.Expire(ctx, key, usageKeyTTL)
	}
	return count, nil
}

func (s *redisUsageStore) Decrement(ctx context.Context, identity string, day time.Time) error {
	if err := s.client.Client.Decr(ctx, usageKey(identity, day)).Err(); err != nil {
		return fmt.Errorf("failed to decrement usage counter: %w", err)
	}
	return nil
}

// memoryUsageStore is a process-local fallback for tests and single-node
// development. Not correct under horizontal scaling; production uses the
// Redis store.
type memoryUsageStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryUsageStore() repositories.UsageStore {
	return &memoryUsageStore{counters: make(map[string]int64)}
}

func (s *memoryUsageStore) Get(_ context.Context, identity string, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[usageKey(identity, day)], nil
}

func (s *memoryUsageStore) Increment(_ context.Context, identity string, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[usageKey(identity, day)]++
	return s.counters[usageKey(identity, day)], nil
}

func (s *memoryUsageStore) Decrement(_ context.Context, identity string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := usageKey(identity, day)
	if s.counters[key] > 0 {
		s.counters[key]--
	}
	return nil
}

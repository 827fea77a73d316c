package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// quotaTTL matches the session lifetime so abandoned counters expire.
const quotaTTL = 7 * 24 * time.Hour

// CounterStore is the monotonic per-session counter behind the
// free-tier quota.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// QuotaService enforces the free-tier ceiling server-side, keyed by
// session ID. Authenticated sessions are unlimited. The counter never
// decreases, so a denied request has still consumed nothing extra.
type QuotaService struct {
	counters CounterStore
	limit    int
}

func NewQuotaService(counters CounterStore, limit int) *QuotaService {
	return &QuotaService{counters: counters, limit: limit}
}

// Consume records one chat turn for the session and reports whether it
// was allowed. Counting errors fail open: quota is a product gate, not
// a security boundary.
func (s *QuotaService) Consume(ctx context.Context, session *Session) error {
	if session.Authenticated() {
		return nil
	}

	count, err := s.counters.Incr(ctx, "chat_quota:"+session.ID)
	if err != nil {
		return nil
	}
	if count > int64(s.limit) {
		return &QuotaError{Limit: s.limit}
	}
	return nil
}

type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (r *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.client.Expire(ctx, key, quotaTTL)
	}
	return count, nil
}

// MemoryCounterStore is the fallback when no Redis is configured, and
// the store used by tests.
type MemoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counts: make(map[string]int64)}
}

func (m *MemoryCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

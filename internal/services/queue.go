package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"worldwise-backend/internal/models"
)

const exchangeQueueKey = "queue:exchange-log"

// ErrQueueEmpty is returned by Dequeue when nothing arrived within the
// wait window.
var ErrQueueEmpty = errors.New("exchange queue empty")

// ExchangeQueue decouples the chat response path from the exchange-log
// write: the orchestrator enqueues and answers immediately, the worker
// pool dequeues and inserts.
type ExchangeQueue interface {
	Enqueue(ctx context.Context, exchange models.StoredExchange) error
	Dequeue(ctx context.Context, wait time.Duration) (*models.StoredExchange, error)
}

type RedisExchangeQueue struct {
	client *redis.Client
}

func NewRedisExchangeQueue(client *redis.Client) *RedisExchangeQueue {
	return &RedisExchangeQueue{client: client}
}

func (q *RedisExchangeQueue) Enqueue(ctx context.Context, exchange models.StoredExchange) error {
	data, err := json.Marshal(exchange)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, exchangeQueueKey, string(data)).Err()
}

func (q *RedisExchangeQueue) Dequeue(ctx context.Context, wait time.Duration) (*models.StoredExchange, error) {
	result, err := q.client.BLPop(ctx, wait, exchangeQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, ErrQueueEmpty
	}

	var exchange models.StoredExchange
	if err := json.Unmarshal([]byte(result[1]), &exchange); err != nil {
		return nil, err
	}
	return &exchange, nil
}

// MemoryExchangeQueue backs the queue with a buffered channel when no
// Redis is configured. Full buffer drops the exchange; the write is
// best-effort by contract.
type MemoryExchangeQueue struct {
	ch chan models.StoredExchange
}

func NewMemoryExchangeQueue(size int) *MemoryExchangeQueue {
	return &MemoryExchangeQueue{ch: make(chan models.StoredExchange, size)}
}

func (q *MemoryExchangeQueue) Enqueue(ctx context.Context, exchange models.StoredExchange) error {
	select {
	case q.ch <- exchange:
		return nil
	default:
		return errors.New("exchange queue full")
	}
}

func (q *MemoryExchangeQueue) Dequeue(ctx context.Context, wait time.Duration) (*models.StoredExchange, error) {
	select {
	case exchange := <-q.ch:
		return &exchange, nil
	case <-time.After(wait):
		return nil, ErrQueueEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

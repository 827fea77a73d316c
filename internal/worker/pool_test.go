package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"worldwise-backend/internal/models"
	"worldwise-backend/internal/services"
)

type recordingInserter struct {
	mu        sync.Mutex
	inserted  []models.StoredExchange
	insertErr error
}

func (r *recordingInserter) Insert(ctx context.Context, exchange *models.StoredExchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, *exchange)
	return nil
}

func (r *recordingInserter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inserted)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}

func TestPool_DrainsQueuedExchanges(t *testing.T) {
	queue := services.NewMemoryExchangeQueue(16)
	inserter := &recordingInserter{}

	pool := NewPool(queue, inserter, 2)
	pool.Start()
	defer pool.Stop()

	for i := 0; i < 3; i++ {
		err := queue.Enqueue(context.Background(), models.StoredExchange{
			UserID: "user-1",
			Prompt: "prompt",
			Reply:  "reply",
		})
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	waitFor(t, 2*time.Second, func() bool { return inserter.count() == 3 })
}

func TestPool_InsertFailureDoesNotStopWorkers(t *testing.T) {
	queue := services.NewMemoryExchangeQueue(16)
	inserter := &recordingInserter{insertErr: errors.New("table missing")}

	pool := NewPool(queue, inserter, 1)
	pool.Start()
	defer pool.Stop()

	queue.Enqueue(context.Background(), models.StoredExchange{UserID: "u", Prompt: "p", Reply: "r"})

	// The failed insert is logged and dropped; the worker keeps going.
	inserter.mu.Lock()
	inserter.insertErr = nil
	inserter.mu.Unlock()

	queue.Enqueue(context.Background(), models.StoredExchange{UserID: "u2", Prompt: "p", Reply: "r"})
	waitFor(t, 2*time.Second, func() bool { return inserter.count() >= 1 })
}

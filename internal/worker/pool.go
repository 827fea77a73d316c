package worker

import (
	"context"
	"log"
	"time"

	"worldwise-backend/internal/models"
	"worldwise-backend/internal/services"
)

// ExchangeInserter is the slice of the repository the pool needs.
type ExchangeInserter interface {
	Insert(ctx context.Context, exchange *models.StoredExchange) error
}

// Pool drains the exchange-log queue in the background. Chat responses
// never wait on these writes and failures stay in the logs.
type Pool struct {
	queue       services.ExchangeQueue
	exchanges   ExchangeInserter
	workerCount int
	stopChan    chan struct{}
}

func NewPool(queue services.ExchangeQueue, exchanges ExchangeInserter, workerCount int) *Pool {
	return &Pool{
		queue:       queue,
		exchanges:   exchanges,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d exchange-log workers", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		exchange, err := p.queue.Dequeue(ctx, 30*time.Second)
		if err != nil {
			if err != services.ErrQueueEmpty {
				log.Printf("Worker %d: dequeue failed: %v", id, err)
			}
			continue
		}

		insertCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := p.exchanges.Insert(insertCtx, exchange); err != nil {
			// Best-effort by contract: log and move on, no retry.
			log.Printf("Worker %d: failed to store exchange for user %s: %v", id, exchange.UserID, err)
		}
		cancel()
	}
}

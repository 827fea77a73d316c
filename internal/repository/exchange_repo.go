package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"worldwise-backend/internal/models"
)

// ExchangeRepo writes chat exchanges to the hosted messages table.
// Rows are independent inserts; nothing in this service reads them back.
type ExchangeRepo struct {
	pool *pgxpool.Pool
}

func NewExchangeRepo(pool *pgxpool.Pool) *ExchangeRepo {
	return &ExchangeRepo{pool: pool}
}

func (r *ExchangeRepo) Insert(ctx context.Context, exchange *models.StoredExchange) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (user_id, prompt, reply)
		VALUES ($1, $2, $3)
	`, exchange.UserID, exchange.Prompt, exchange.Reply)
	return err
}

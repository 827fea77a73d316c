package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"worldwise-backend/internal/models"
)

// ProfileRepo keeps the hosted profiles table in step with Google
// sign-ins. Upsert only; the schema belongs to the hosting provider.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Upsert(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, email, full_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url
	`, user.ID, user.Email, user.DisplayName, user.Photo)
	return err
}

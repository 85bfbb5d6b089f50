package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore and CartStore are the order workflow's views onto tables owned by
// the wider platform: it only ever checks user existence and empties carts.

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

type CartStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCartStore(log *slog.Logger, pool *pgxpool.Pool) *CartStore {
	return &CartStore{log: log, pool: pool}
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE carts SET items='[]'::jsonb, updated_at=now() WHERE user_id=$1`, userID)
	return err
}

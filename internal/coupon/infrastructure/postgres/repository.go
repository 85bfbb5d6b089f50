package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Storefront-Order-Service/internal/coupon/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// FindByCode returns nil without error when no coupon matches; eligibility
// (active, unexpired) is decided by the domain, not the query.
func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, discount_type, offer_value, expires_at, active
		FROM coupons WHERE code=$1`, code).
		Scan(&c.ID, &c.Code, &c.DiscountType, &c.OfferValue, &c.ExpiresAt, &c.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

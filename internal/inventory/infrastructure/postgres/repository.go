package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Storefront-Order-Service/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Available(ctx context.Context, productID, variantID string) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx, `
		SELECT available_quantity FROM product_variants
		WHERE product_id=$1 AND variant_id=$2`, productID, variantID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: unknown variant %s/%s", domain.ErrInsufficientStock, productID, variantID)
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// Reserve relies on the quantity-gated UPDATE as the single-variant
// check-and-decrement primitive; zero rows affected means the gate failed.
func (r *Repository) Reserve(ctx context.Context, productID, variantID string, qty int) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE product_variants
		SET available_quantity = available_quantity - $3
		WHERE product_id=$1 AND variant_id=$2 AND available_quantity >= $3`,
		productID, variantID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: variant %s/%s", domain.ErrInsufficientStock, productID, variantID)
	}
	return nil
}

func (r *Repository) Release(ctx context.Context, productID, variantID string, qty int) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE product_variants
		SET available_quantity = available_quantity + $3
		WHERE product_id=$1 AND variant_id=$2`,
		productID, variantID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("unknown variant %s/%s", productID, variantID)
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Storefront-Order-Service/internal/order/application"
	"github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
	"github.com/dmehra2102/Storefront-Order-Service/pkg/tracing"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const orderColumns = `id, user_id, items, shipping_address, payment_method, coupon,
	total_amount, discount_amount, final_amount, order_status, payment_status,
	gateway_ref, return_details, order_date, updated_at`

// SaveWithOutbox upserts the order row and appends the outbox event in one
// transaction. Item, address, coupon, gateway and return snapshots are stored
// as jsonb documents; they are point-in-time copies, not live references.
func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	coupon, err := marshalNullable(o.Coupon)
	if err != nil {
		return err
	}
	gatewayRef, err := marshalNullable(o.Gateway)
	if err != nil {
		return err
	}
	returnDetails, err := marshalNullable(o.ReturnDetails)
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			order_status=$10, payment_status=$11, gateway_ref=$12,
			return_details=$13, updated_at=$15`,
		o.ID, o.UserID, items, addr, o.PaymentMethod, coupon,
		o.TotalAmount, o.DiscountAmount, o.FinalAmount, o.Status, o.PaymentStatus,
		gatewayRef, returnDetails, o.OrderDate, o.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, eventType, payload, map[string]string{"source": "order-service"}, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE gateway_ref->>'externalOrderId' = $1`, gatewayOrderID)
	return scanOrder(row)
}

func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id=$1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var items, addr []byte
	var coupon, gatewayRef, returnDetails []byte

	err := row.Scan(&o.ID, &o.UserID, &items, &addr, &o.PaymentMethod, &coupon,
		&o.TotalAmount, &o.DiscountAmount, &o.FinalAmount, &o.Status, &o.PaymentStatus,
		&gatewayRef, &returnDetails, &o.OrderDate, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, application.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items for order %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return domain.Order{}, fmt.Errorf("decode address for order %s: %w", o.ID, err)
	}
	if err := unmarshalNullable(coupon, &o.Coupon); err != nil {
		return domain.Order{}, err
	}
	if err := unmarshalNullable(gatewayRef, &o.Gateway); err != nil {
		return domain.Order{}, err
	}
	if err := unmarshalNullable(returnDetails, &o.ReturnDetails); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable[T any](raw []byte, target **T) error {
	if len(raw) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*target = &v
	return nil
}

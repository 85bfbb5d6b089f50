package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Find(ctx context.Context, userID string) (domain.Wallet, error) {
	w := domain.Wallet{UserID: userID}
	err := r.pool.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id=$1`, userID).
		Scan(&w.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}
	if err != nil {
		return domain.Wallet{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, type, amount, description, status, created_at
		FROM wallet_transactions WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return domain.Wallet{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.Status, &t.Date); err != nil {
			return domain.Wallet{}, err
		}
		w.Transactions = append(w.Transactions, t)
	}
	return w, rows.Err()
}

// ApplyCredit creates the wallet on first use; the balance update and the
// transaction append commit together.
func (r *Repository) ApplyCredit(ctx context.Context, userID string, t domain.Transaction) (domain.Wallet, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Wallet{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO wallets (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2`,
		userID, t.Amount)
	if err != nil {
		return domain.Wallet{}, err
	}
	if err := appendTransaction(ctx, tx, userID, t); err != nil {
		return domain.Wallet{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Wallet{}, err
	}
	return r.Find(ctx, userID)
}

// ApplyDebit gates the balance update on sufficiency in SQL, so the balance
// can never go negative even under concurrent debits.
func (r *Repository) ApplyDebit(ctx context.Context, userID string, t domain.Transaction) (domain.Wallet, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Wallet{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `
		UPDATE wallets SET balance = balance - $2
		WHERE user_id=$1 AND balance >= $2`,
		userID, t.Amount)
	if err != nil {
		return domain.Wallet{}, err
	}
	if ct.RowsAffected() == 0 {
		return domain.Wallet{}, domain.ErrInsufficientFunds
	}
	if err := appendTransaction(ctx, tx, userID, t); err != nil {
		return domain.Wallet{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Wallet{}, err
	}
	return r.Find(ctx, userID)
}

func appendTransaction(ctx context.Context, tx pgx.Tx, userID string, t domain.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, user_id, type, amount, description, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, userID, t.Type, t.Amount, t.Description, t.Status, t.Date)
	return err
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

const statusCompleted = "completed"

// Ledger exposes the wallet as both a payment method and a refund
// destination. Every credit and debit appends exactly one transaction.
type Ledger struct {
	log  *slog.Logger
	repo WalletRepository
}

func NewLedger(log *slog.Logger, repo WalletRepository) *Ledger {
	return &Ledger{log: log, repo: repo}
}

func (l *Ledger) Credit(ctx context.Context, userID string, amount decimal.Decimal, description string, txType domain.TransactionType) (domain.Wallet, error) {
	if !amount.IsPositive() {
		return domain.Wallet{}, fmt.Errorf("credit amount must be positive, got %s", amount)
	}
	w, err := l.repo.ApplyCredit(ctx, userID, newTransaction(txType, amount, description))
	if err != nil {
		return domain.Wallet{}, err
	}
	l.log.Info("wallet credited", "user_id", userID, "amount", amount, "type", txType, "balance", w.Balance)
	return w, nil
}

func (l *Ledger) Debit(ctx context.Context, userID string, amount decimal.Decimal, description string) (domain.Wallet, error) {
	if !amount.IsPositive() {
		return domain.Wallet{}, fmt.Errorf("debit amount must be positive, got %s", amount)
	}
	w, err := l.repo.ApplyDebit(ctx, userID, newTransaction(domain.TypeDebit, amount, description))
	if err != nil {
		return domain.Wallet{}, err
	}
	l.log.Info("wallet debited", "user_id", userID, "amount", amount, "balance", w.Balance)
	return w, nil
}

// Balance returns zero for users who have no wallet yet.
func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	w, err := l.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (l *Ledger) Get(ctx context.Context, userID string) (domain.Wallet, error) {
	return l.repo.Find(ctx, userID)
}

func newTransaction(txType domain.TransactionType, amount decimal.Decimal, description string) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.NewString(),
		Type:        txType,
		Amount:      amount,
		Description: description,
		Status:      statusCompleted,
		Date:        time.Now().UTC(),
	}
}

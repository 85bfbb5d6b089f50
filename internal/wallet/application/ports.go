package application

import (
	"context"

	"github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

type WalletRepository interface {
	Find(ctx context.Context, userID string) (domain.Wallet, error)
	// ApplyCredit adds the transaction amount to the balance, creating the
	// wallet when none exists, and appends the transaction in the same
	// storage transaction.
	ApplyCredit(ctx context.Context, userID string, tx domain.Transaction) (domain.Wallet, error)
	// ApplyDebit subtracts the amount only when balance >= amount, appending
	// the transaction; otherwise it returns domain.ErrInsufficientFunds with
	// no state change.
	ApplyDebit(ctx context.Context, userID string, tx domain.Transaction) (domain.Wallet, error)
}

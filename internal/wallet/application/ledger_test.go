package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

// fakeWalletRepo mirrors the storage contract: credits create wallets lazily,
// debits are gated on sufficiency and mutate nothing when the gate fails.
type fakeWalletRepo struct {
	wallets map[string]*domain.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: map[string]*domain.Wallet{}}
}

func (f *fakeWalletRepo) Find(_ context.Context, userID string) (domain.Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}
	return *w, nil
}

func (f *fakeWalletRepo) ApplyCredit(_ context.Context, userID string, tx domain.Transaction) (domain.Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok {
		w = &domain.Wallet{UserID: userID, Balance: decimal.Zero}
		f.wallets[userID] = w
	}
	w.Balance = w.Balance.Add(tx.Amount)
	w.Transactions = append(w.Transactions, tx)
	return *w, nil
}

func (f *fakeWalletRepo) ApplyDebit(_ context.Context, userID string, tx domain.Transaction) (domain.Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok || w.Balance.LessThan(tx.Amount) {
		return domain.Wallet{}, domain.ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(tx.Amount)
	w.Transactions = append(w.Transactions, tx)
	return *w, nil
}

func TestCreditCreatesWalletLazily(t *testing.T) {
	repo := newFakeWalletRepo()
	ledger := NewLedger(slog.Default(), repo)

	w, err := ledger.Credit(context.Background(), "u1", decimal.NewFromInt(120), "Refund for order o1", domain.TypeRefund)
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if w.Balance.String() != "120" {
		t.Errorf("balance = %s, want 120", w.Balance)
	}
	if len(w.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(w.Transactions))
	}
	tx := w.Transactions[0]
	if tx.Type != domain.TypeRefund {
		t.Errorf("tx type = %s, want %s", tx.Type, domain.TypeRefund)
	}
	if tx.ID == "" {
		t.Error("transaction id must be generated")
	}
	if tx.Status != statusCompleted {
		t.Errorf("tx status = %s, want %s", tx.Status, statusCompleted)
	}
}

func TestDebit(t *testing.T) {
	ctx := context.Background()

	t.Run("sufficient balance", func(t *testing.T) {
		repo := newFakeWalletRepo()
		ledger := NewLedger(slog.Default(), repo)
		_, _ = ledger.Credit(ctx, "u1", decimal.NewFromInt(500), "opening", domain.TypeRefund)

		w, err := ledger.Debit(ctx, "u1", decimal.NewFromInt(300), "Payment for order o1")
		if err != nil {
			t.Fatalf("Debit() error = %v", err)
		}
		if w.Balance.String() != "200" {
			t.Errorf("balance = %s, want 200", w.Balance)
		}
		if len(w.Transactions) != 2 {
			t.Errorf("transactions = %d, want 2", len(w.Transactions))
		}
		if got := w.Transactions[1].Type; got != domain.TypeDebit {
			t.Errorf("tx type = %s, want %s", got, domain.TypeDebit)
		}
	})

	t.Run("insufficient balance rejected with no transaction appended", func(t *testing.T) {
		repo := newFakeWalletRepo()
		ledger := NewLedger(slog.Default(), repo)
		_, _ = ledger.Credit(ctx, "u1", decimal.NewFromInt(100), "opening", domain.TypeRefund)

		_, err := ledger.Debit(ctx, "u1", decimal.NewFromInt(101), "too much")
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("Debit() error = %v, want ErrInsufficientFunds", err)
		}

		w, _ := ledger.Get(ctx, "u1")
		if w.Balance.String() != "100" {
			t.Errorf("balance = %s, want unchanged 100", w.Balance)
		}
		if len(w.Transactions) != 1 {
			t.Errorf("transactions = %d, want 1 (no debit appended)", len(w.Transactions))
		}
	})

	t.Run("no wallet at all", func(t *testing.T) {
		ledger := NewLedger(slog.Default(), newFakeWalletRepo())
		_, err := ledger.Debit(ctx, "nobody", decimal.NewFromInt(1), "x")
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("Debit() error = %v, want ErrInsufficientFunds", err)
		}
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		ledger := NewLedger(slog.Default(), newFakeWalletRepo())
		if _, err := ledger.Debit(ctx, "u1", decimal.Zero, "x"); err == nil {
			t.Error("Debit(0) should fail")
		}
		if _, err := ledger.Credit(ctx, "u1", decimal.NewFromInt(-5), "x", domain.TypeRefund); err == nil {
			t.Error("Credit(-5) should fail")
		}
	})
}

func TestBalanceDefaultsToZero(t *testing.T) {
	ledger := NewLedger(slog.Default(), newFakeWalletRepo())

	bal, err := ledger.Balance(context.Background(), "newcomer")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if !bal.IsZero() {
		t.Errorf("balance = %s, want 0", bal)
	}
}

package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrWalletNotFound    = errors.New("wallet not found")
)

type TransactionType string

const (
	TypeDebit  TransactionType = "wallet-debit"
	TypeRefund TransactionType = "refund"
)

// Transaction is one entry of the append-only audit log. Entries are never
// edited or deleted.
type Transaction struct {
	ID          string          `json:"transactionId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Date        time.Time       `json:"date"`
}

// Wallet is the per-user stored-value ledger, created lazily on first credit
// or debit and never deleted.
type Wallet struct {
	UserID       string          `json:"userId"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

package application

import (
	"context"

	"github.com/shopspring/decimal"

	coupondomain "github.com/dmehra2102/Storefront-Order-Service/internal/coupon/domain"
	"github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
	"github.com/dmehra2102/Storefront-Order-Service/internal/payment/gateway"
	walletdomain "github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

type OrderRepository interface {
	// SaveWithOutbox persists the order and the outbox event in one storage
	// transaction.
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error
	Get(ctx context.Context, id string) (domain.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (domain.Order, error)
	// FindByUser returns the user's orders newest-first.
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListAll returns every order newest-first.
	ListAll(ctx context.Context) ([]domain.Order, error)
}

type Inventory interface {
	ReserveAll(ctx context.Context, items []domain.Item) error
	ReleaseAll(ctx context.Context, items []domain.Item) error
}

type WalletLedger interface {
	Credit(ctx context.Context, userID string, amount decimal.Decimal, description string, txType walletdomain.TransactionType) (walletdomain.Wallet, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal, description string) (walletdomain.Wallet, error)
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

type CouponStore interface {
	// FindByCode returns (nil, nil) when no coupon carries the code.
	FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error)
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (gateway.Order, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type UserStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type CartStore interface {
	Clear(ctx context.Context, userID string) error
}

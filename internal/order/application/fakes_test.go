package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	coupondomain "github.com/dmehra2102/Storefront-Order-Service/internal/coupon/domain"
	inventorydomain "github.com/dmehra2102/Storefront-Order-Service/internal/inventory/domain"
	"github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
	"github.com/dmehra2102/Storefront-Order-Service/internal/payment/gateway"
	walletdomain "github.com/dmehra2102/Storefront-Order-Service/internal/wallet/domain"
)

type fakeOrders struct {
	byID   map[string]domain.Order
	events []string
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[string]domain.Order{}}
}

func (f *fakeOrders) SaveWithOutbox(_ context.Context, o domain.Order, eventType string, _ []byte) error {
	f.byID[o.ID] = o
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (domain.Order, error) {
	for _, o := range f.byID {
		if o.Gateway != nil && o.Gateway.ExternalOrderID == gatewayOrderID {
			return o, nil
		}
	}
	return domain.Order{}, ErrOrderNotFound
}

func (f *fakeOrders) FindByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.byID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

// fakeInventory keeps the real reservation semantics: availability is checked
// for every line before any decrement.
type fakeInventory struct {
	stock map[string]int
}

func newFakeInventory(stock map[string]int) *fakeInventory {
	return &fakeInventory{stock: stock}
}

func stockKey(it domain.Item) string { return it.ProductID + "/" + it.VariantID }

func (f *fakeInventory) ReserveAll(_ context.Context, items []domain.Item) error {
	for _, it := range items {
		if f.stock[stockKey(it)] < it.Quantity {
			return inventorydomain.ErrInsufficientStock
		}
	}
	for _, it := range items {
		f.stock[stockKey(it)] -= it.Quantity
	}
	return nil
}

func (f *fakeInventory) ReleaseAll(_ context.Context, items []domain.Item) error {
	for _, it := range items {
		f.stock[stockKey(it)] += it.Quantity
	}
	return nil
}

type fakeLedger struct {
	balances map[string]decimal.Decimal
	txs      map[string][]walletdomain.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: map[string]decimal.Decimal{},
		txs:      map[string][]walletdomain.Transaction{},
	}
}

func (f *fakeLedger) wallet(userID string) walletdomain.Wallet {
	return walletdomain.Wallet{UserID: userID, Balance: f.balances[userID], Transactions: f.txs[userID]}
}

func (f *fakeLedger) Credit(_ context.Context, userID string, amount decimal.Decimal, description string, txType walletdomain.TransactionType) (walletdomain.Wallet, error) {
	f.balances[userID] = f.balances[userID].Add(amount)
	f.txs[userID] = append(f.txs[userID], walletdomain.Transaction{
		ID: description, Type: txType, Amount: amount, Description: description,
		Status: "completed", Date: time.Now(),
	})
	return f.wallet(userID), nil
}

func (f *fakeLedger) Debit(_ context.Context, userID string, amount decimal.Decimal, description string) (walletdomain.Wallet, error) {
	if f.balances[userID].LessThan(amount) {
		return walletdomain.Wallet{}, walletdomain.ErrInsufficientFunds
	}
	f.balances[userID] = f.balances[userID].Sub(amount)
	f.txs[userID] = append(f.txs[userID], walletdomain.Transaction{
		ID: description, Type: walletdomain.TypeDebit, Amount: amount, Description: description,
		Status: "completed", Date: time.Now(),
	})
	return f.wallet(userID), nil
}

func (f *fakeLedger) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	bal, ok := f.balances[userID]
	if !ok {
		return decimal.Zero, nil
	}
	return bal, nil
}

type fakeCoupons struct {
	byCode map[string]*coupondomain.Coupon
}

func (f *fakeCoupons) FindByCode(_ context.Context, code string) (*coupondomain.Coupon, error) {
	return f.byCode[code], nil
}

type fakeGateway struct {
	secret  string
	nextID  string
	failing bool
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency string) (gateway.Order, error) {
	if f.failing {
		return gateway.Order{}, errors.New("gateway unreachable")
	}
	return gateway.Order{
		ID:       f.nextID,
		Amount:   amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency: currency,
	}, nil
}

func (f *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return gateway.VerifySignature(f.secret, gatewayOrderID, paymentID, signature)
}

type fakeUsers struct {
	known map[string]bool
}

func (f *fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

type fakeCarts struct {
	cleared []string
}

func (f *fakeCarts) Clear(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

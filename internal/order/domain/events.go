package domain

import "github.com/shopspring/decimal"

type OrderPlaced struct {
	OrderID       string
	UserID        string
	PaymentMethod PaymentMethod
	FinalAmount   decimal.Decimal
	Items         []Item
}

type OrderStatusChanged struct {
	OrderID  string
	UserID   string
	From     OrderStatus
	To       OrderStatus
	Refunded bool
}

type RefundIssued struct {
	OrderID string
	UserID  string
	Amount  decimal.Decimal
}

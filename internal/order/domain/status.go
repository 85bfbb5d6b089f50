package domain

type OrderStatus string

const (
	StatusProcessing    OrderStatus = "Processing"
	StatusConfirmed     OrderStatus = "Confirmed"
	StatusShipped       OrderStatus = "Shipped"
	StatusDelivered     OrderStatus = "Delivered"
	StatusCancelled     OrderStatus = "Cancelled"
	StatusReturned      OrderStatus = "Returned"
	StatusPaymentFailed OrderStatus = "Payment Failed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "COD"
	OnlineGateway  PaymentMethod = "Online"
	WalletPayment  PaymentMethod = "Wallet"
)

func ParseStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusProcessing, StatusConfirmed, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReturned:
		return OrderStatus(s), true
	}
	return "", false
}

// Cancellable reports whether an order may still be cancelled. Shipped and
// Delivered orders are past the point of no return.
func (s OrderStatus) Cancellable() bool {
	return s == StatusProcessing || s == StatusConfirmed
}

// Returnable reports whether a return may be requested.
func (s OrderStatus) Returnable() bool {
	return s == StatusDelivered
}

// Terminal reports whether no further transition is expected.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusReturned, StatusPaymentFailed:
		return true
	}
	return false
}

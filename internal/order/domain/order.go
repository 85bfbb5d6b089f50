package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is an immutable line-item snapshot taken at order creation, so order
// history survives later catalog edits.
type Item struct {
	ProductID string            `json:"productId"`
	VariantID string            `json:"variantId"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unitPrice"`
	Variant   map[string]string `json:"variant,omitempty"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Address is denormalised onto the order, not a live reference.
type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// AppliedCoupon is the snapshot of a coupon resolved once at checkout.
type AppliedCoupon struct {
	CouponID       string          `json:"couponId"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discountType"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

type GatewayReference struct {
	ExternalOrderID string `json:"externalOrderId"`
	PaymentID       string `json:"paymentId,omitempty"`
	Signature       string `json:"signature,omitempty"`
}

type ReturnDetails struct {
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	ReturnDate  time.Time `json:"returnDate"`
}

type Order struct {
	ID              string
	UserID          string
	Items           []Item
	ShippingAddress Address
	PaymentMethod   PaymentMethod
	Coupon          *AppliedCoupon
	TotalAmount     decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalAmount     decimal.Decimal
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	Gateway         *GatewayReference
	ReturnDetails   *ReturnDetails
	OrderDate       time.Time
	UpdatedAt       time.Time
}

// NewOrder builds an order with totals derived from the item snapshots.
// FinalAmount is clamped so a discount can never push it negative or above
// the pre-discount total.
func NewOrder(id, userID string, items []Item, addr Address, method PaymentMethod, coupon *AppliedCoupon) Order {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal())
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.DiscountAmount
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	now := time.Now().UTC()
	return Order{
		ID:              id,
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   method,
		Coupon:          coupon,
		TotalAmount:     subtotal,
		DiscountAmount:  discount,
		FinalAmount:     subtotal.Sub(discount),
		Status:          StatusProcessing,
		PaymentStatus:   PaymentPending,
		OrderDate:       now,
		UpdatedAt:       now,
	}
}

// RefundEligible reports whether a settled payment exists to hand back.
func (o Order) RefundEligible() bool {
	return o.PaymentStatus == PaymentCompleted
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	Percentage DiscountType = "percentage"
	Flat       DiscountType = "flat"
)

type Coupon struct {
	ID           string
	Code         string
	DiscountType DiscountType
	OfferValue   decimal.Decimal
	ExpiresAt    time.Time
	Active       bool
}

var hundred = decimal.NewFromInt(100)

// DiscountFor prices the coupon against an order subtotal. An inactive or
// expired coupon yields zero rather than an error so it can never block
// checkout. The result is clamped to the subtotal.
func (c Coupon) DiscountFor(subtotal decimal.Decimal, now time.Time) decimal.Decimal {
	if !c.Active || !c.ExpiresAt.After(now) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case Percentage:
		discount = subtotal.Mul(c.OfferValue).Div(hundred)
	case Flat:
		discount = c.OfferValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

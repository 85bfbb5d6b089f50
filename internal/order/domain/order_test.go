package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func item(qty int, price int64) Item {
	return Item{ProductID: "p1", VariantID: "v1", Name: "thing", Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func TestNewOrderTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		coupon       *AppliedCoupon
		wantTotal    string
		wantDiscount string
		wantFinal    string
	}{
		{
			name:      "no coupon",
			items:     []Item{item(2, 100), item(1, 50)},
			wantTotal: "250", wantDiscount: "0", wantFinal: "250",
		},
		{
			name:      "coupon discount subtracted",
			items:     []Item{item(3, 100)},
			coupon:    &AppliedCoupon{Code: "SAVE50", DiscountAmount: decimal.NewFromInt(50)},
			wantTotal: "300", wantDiscount: "50", wantFinal: "250",
		},
		{
			name:      "discount exceeding total clamps final to zero",
			items:     []Item{item(1, 40)},
			coupon:    &AppliedCoupon{Code: "BIG", DiscountAmount: decimal.NewFromInt(100)},
			wantTotal: "40", wantDiscount: "40", wantFinal: "0",
		},
		{
			name:      "negative discount treated as zero",
			items:     []Item{item(1, 40)},
			coupon:    &AppliedCoupon{Code: "NEG", DiscountAmount: decimal.NewFromInt(-10)},
			wantTotal: "40", wantDiscount: "0", wantFinal: "40",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrder("o1", "u1", tt.items, Address{City: "x"}, CashOnDelivery, tt.coupon)

			if o.TotalAmount.String() != tt.wantTotal {
				t.Errorf("TotalAmount = %s, want %s", o.TotalAmount, tt.wantTotal)
			}
			if o.DiscountAmount.String() != tt.wantDiscount {
				t.Errorf("DiscountAmount = %s, want %s", o.DiscountAmount, tt.wantDiscount)
			}
			if o.FinalAmount.String() != tt.wantFinal {
				t.Errorf("FinalAmount = %s, want %s", o.FinalAmount, tt.wantFinal)
			}
			if o.FinalAmount.IsNegative() {
				t.Error("FinalAmount must never be negative")
			}
			if o.DiscountAmount.GreaterThan(o.TotalAmount) {
				t.Error("DiscountAmount must never exceed TotalAmount")
			}
			if o.Status != StatusProcessing {
				t.Errorf("initial status = %s, want %s", o.Status, StatusProcessing)
			}
			if o.PaymentStatus != PaymentPending {
				t.Errorf("initial payment status = %s, want %s", o.PaymentStatus, PaymentPending)
			}
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		StatusProcessing: true,
		StatusConfirmed:  true,
		StatusShipped:    false,
		StatusDelivered:  false,
		StatusCancelled:  false,
		StatusReturned:   false,
	}
	for status, want := range cancellable {
		if got := status.Cancellable(); got != want {
			t.Errorf("%s.Cancellable() = %v, want %v", status, got, want)
		}
	}

	for _, status := range []OrderStatus{StatusProcessing, StatusConfirmed, StatusShipped, StatusCancelled, StatusReturned} {
		if status.Returnable() {
			t.Errorf("%s.Returnable() = true, only Delivered orders may be returned", status)
		}
	}
	if !StatusDelivered.Returnable() {
		t.Error("Delivered.Returnable() = false, want true")
	}
}

func TestParseStatus(t *testing.T) {
	if _, ok := ParseStatus("Shipped"); !ok {
		t.Error("Shipped should parse")
	}
	if _, ok := ParseStatus("Payment Failed"); ok {
		t.Error("Payment Failed is creation-only and must not parse as a transition target")
	}
	if _, ok := ParseStatus("teleported"); ok {
		t.Error("unknown status should not parse")
	}
}

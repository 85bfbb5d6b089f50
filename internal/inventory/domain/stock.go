package domain

import "errors"

var ErrInsufficientStock = errors.New("insufficient stock")

// Variant is the unit of stock: one purchasable configuration of a product,
// addressed by the compound key (product id, variant id).
type Variant struct {
	ProductID         string
	VariantID         string
	AvailableQuantity int
}

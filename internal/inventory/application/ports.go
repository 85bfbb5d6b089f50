package application

import "context"

type VariantStore interface {
	Available(ctx context.Context, productID, variantID string) (int, error)
	// Reserve atomically decrements a single variant's available quantity,
	// failing with domain.ErrInsufficientStock when the gate does not hold.
	Reserve(ctx context.Context, productID, variantID string, qty int) error
	Release(ctx context.Context, productID, variantID string, qty int) error
}

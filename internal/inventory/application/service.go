package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmehra2102/Storefront-Order-Service/internal/inventory/domain"
	orderdomain "github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
)

type Service struct {
	log   *slog.Logger
	store VariantStore
}

func NewService(log *slog.Logger, store VariantStore) *Service {
	return &Service{log: log, store: store}
}

// ReserveAll checks availability for every line before any decrement is
// applied, then issues the decrements concurrently. A decrement that fails
// after the check does not roll back its siblings; that gap is inherited from
// the storage model, which only guarantees atomicity per variant.
func (s *Service) ReserveAll(ctx context.Context, items []orderdomain.Item) error {
	for _, it := range items {
		avail, err := s.store.Available(ctx, it.ProductID, it.VariantID)
		if err != nil {
			return err
		}
		if avail < it.Quantity {
			return fmt.Errorf("%w: variant %s/%s has %d, want %d",
				domain.ErrInsufficientStock, it.ProductID, it.VariantID, avail, it.Quantity)
		}
	}
	return s.fanOut(ctx, items, s.store.Reserve)
}

// ReleaseAll restores each line's quantity, used on cancellation and return.
func (s *Service) ReleaseAll(ctx context.Context, items []orderdomain.Item) error {
	return s.fanOut(ctx, items, s.store.Release)
}

func (s *Service) fanOut(ctx context.Context, items []orderdomain.Item, op func(context.Context, string, string, int) error) error {
	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(i int, it orderdomain.Item) {
			defer wg.Done()
			errs[i] = op(ctx, it.ProductID, it.VariantID, it.Quantity)
		}(i, it)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			s.log.Error("stock mutation failed", "product_id", items[i].ProductID,
				"variant_id", items[i].VariantID, "err", err)
			return err
		}
	}
	return nil
}

package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/Storefront-Order-Service/internal/inventory/domain"
	orderdomain "github.com/dmehra2102/Storefront-Order-Service/internal/order/domain"
)

type fakeVariantStore struct {
	mu    sync.Mutex
	stock map[string]int
}

func newFakeVariantStore(stock map[string]int) *fakeVariantStore {
	return &fakeVariantStore{stock: stock}
}

func key(productID, variantID string) string { return productID + "/" + variantID }

func (f *fakeVariantStore) Available(_ context.Context, productID, variantID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qty, ok := f.stock[key(productID, variantID)]
	if !ok {
		return 0, domain.ErrInsufficientStock
	}
	return qty, nil
}

func (f *fakeVariantStore) Reserve(_ context.Context, productID, variantID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(productID, variantID)
	if f.stock[k] < qty {
		return domain.ErrInsufficientStock
	}
	f.stock[k] -= qty
	return nil
}

func (f *fakeVariantStore) Release(_ context.Context, productID, variantID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[key(productID, variantID)] += qty
	return nil
}

func (f *fakeVariantStore) quantity(productID, variantID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[key(productID, variantID)]
}

func line(productID, variantID string, qty int) orderdomain.Item {
	return orderdomain.Item{ProductID: productID, VariantID: variantID, Quantity: qty, UnitPrice: decimal.NewFromInt(10)}
}

func TestReserveAll(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	t.Run("reserves every line", func(t *testing.T) {
		store := newFakeVariantStore(map[string]int{"p1/v1": 5, "p2/v1": 3})
		svc := NewService(log, store)

		err := svc.ReserveAll(ctx, []orderdomain.Item{line("p1", "v1", 2), line("p2", "v1", 3)})
		if err != nil {
			t.Fatalf("ReserveAll() error = %v", err)
		}
		if got := store.quantity("p1", "v1"); got != 3 {
			t.Errorf("p1/v1 quantity = %d, want 3", got)
		}
		if got := store.quantity("p2", "v1"); got != 0 {
			t.Errorf("p2/v1 quantity = %d, want 0", got)
		}
	})

	t.Run("one short line fails the whole order with nothing decremented", func(t *testing.T) {
		store := newFakeVariantStore(map[string]int{"p1/v1": 5, "p2/v1": 1})
		svc := NewService(log, store)

		err := svc.ReserveAll(ctx, []orderdomain.Item{line("p1", "v1", 2), line("p2", "v1", 4)})
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("ReserveAll() error = %v, want ErrInsufficientStock", err)
		}
		if got := store.quantity("p1", "v1"); got != 5 {
			t.Errorf("p1/v1 quantity = %d, want 5 (untouched)", got)
		}
		if got := store.quantity("p2", "v1"); got != 1 {
			t.Errorf("p2/v1 quantity = %d, want 1 (untouched)", got)
		}
	})

	t.Run("unknown variant fails availability check", func(t *testing.T) {
		store := newFakeVariantStore(map[string]int{})
		svc := NewService(log, store)

		err := svc.ReserveAll(ctx, []orderdomain.Item{line("ghost", "v1", 1)})
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("ReserveAll() error = %v, want ErrInsufficientStock", err)
		}
	})
}

func TestReleaseAllRestoresQuantities(t *testing.T) {
	ctx := context.Background()
	store := newFakeVariantStore(map[string]int{"p1/v1": 0, "p2/v1": 1})
	svc := NewService(slog.Default(), store)

	items := []orderdomain.Item{line("p1", "v1", 3), line("p2", "v1", 2)}
	if err := svc.ReleaseAll(ctx, items); err != nil {
		t.Fatalf("ReleaseAll() error = %v", err)
	}
	if got := store.quantity("p1", "v1"); got != 3 {
		t.Errorf("p1/v1 quantity = %d, want 3", got)
	}
	if got := store.quantity("p2", "v1"); got != 3 {
		t.Errorf("p2/v1 quantity = %d, want 3", got)
	}
}

func TestReserveThenReleaseRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newFakeVariantStore(map[string]int{"p1/v1": 10, "p1/v2": 7, "p2/v1": 4})
	svc := NewService(slog.Default(), store)

	items := []orderdomain.Item{line("p1", "v1", 4), line("p1", "v2", 7), line("p2", "v1", 1)}
	if err := svc.ReserveAll(ctx, items); err != nil {
		t.Fatalf("ReserveAll() error = %v", err)
	}
	if err := svc.ReleaseAll(ctx, items); err != nil {
		t.Fatalf("ReleaseAll() error = %v", err)
	}

	for _, tc := range []struct {
		p, v string
		want int
	}{{"p1", "v1", 10}, {"p1", "v2", 7}, {"p2", "v1", 4}} {
		if got := store.quantity(tc.p, tc.v); got != tc.want {
			t.Errorf("%s/%s quantity = %d, want %d", tc.p, tc.v, got, tc.want)
		}
	}
}

// internal/application/usecase/inventory_usecase_test.go
package usecase

import (
	"context"
	"sync"
	"testing"
)

func TestAggregateSaleLines(t *testing.T) {
	got := aggregateSaleLines([]SaleLine{
		{ProductID: "p2", SizeKey: "50ml", Quantity: 1},
		{ProductID: "p1", SizeKey: "50ml", Quantity: 2},
		{ProductID: "p1", SizeKey: " 50ml ", Quantity: 3},
		{ProductID: "p1", SizeKey: "100ml", Quantity: 1},
		{ProductID: "", SizeKey: "50ml", Quantity: 1},
		{ProductID: "p3", SizeKey: "", Quantity: 1},
		{ProductID: "p3", SizeKey: "50ml", Quantity: 0},
	})

	want := []SaleLine{
		{ProductID: "p1", SizeKey: "100ml", Quantity: 1},
		{ProductID: "p1", SizeKey: "50ml", Quantity: 5},
		{ProductID: "p2", SizeKey: "50ml", Quantity: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAdjustForSale_DecrementsAndFlags(t *testing.T) {
	repo := newFakeProductRepo(sizedProduct())
	uc := NewInventoryUsecase(repo)
	ctx := context.Background()

	uc.AdjustForSale(ctx, "o1", []SaleLine{
		{ProductID: "p1", SizeKey: "50ml", Quantity: 2},
		{ProductID: "p1", SizeKey: "100ml", Quantity: 7}, // over stock, floors at 0
	})

	p, _ := repo.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 1 || p.Sizes[0].OutOfStock {
		t.Errorf("50ml: expected stock 1 in stock, got %+v", p.Sizes[0])
	}
	if p.Sizes[1].Stock != 0 || !p.Sizes[1].OutOfStock {
		t.Errorf("100ml: expected floored out-of-stock, got %+v", p.Sizes[1])
	}
	if p.OutOfStock {
		t.Error("product flag must stay clear while a size remains in stock")
	}
}

func TestAdjustForSale_MissingProductDoesNotHaltOthers(t *testing.T) {
	repo := newFakeProductRepo(sizedProduct())
	uc := NewInventoryUsecase(repo)
	ctx := context.Background()

	uc.AdjustForSale(ctx, "o1", []SaleLine{
		{ProductID: "ghost", SizeKey: "50ml", Quantity: 1},
		{ProductID: "p1", SizeKey: "50ml", Quantity: 1},
	})

	p, _ := repo.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 2 {
		t.Errorf("surviving line must still decrement, got %d", p.Sizes[0].Stock)
	}
}

func TestAdjustForSale_UnknownSizeSkipsSilently(t *testing.T) {
	repo := newFakeProductRepo(sizedProduct())
	uc := NewInventoryUsecase(repo)
	ctx := context.Background()

	uc.AdjustForSale(ctx, "o1", []SaleLine{
		{ProductID: "p1", SizeKey: "75ml", Quantity: 1},
	})

	p, _ := repo.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 3 || p.Sizes[1].Stock != 5 {
		t.Errorf("unknown size must leave stock untouched, got %+v", p.Sizes)
	}
}

func TestAdjustForSale_ConcurrentSalesNeverGoNegative(t *testing.T) {
	repo := newFakeProductRepo(sizedProduct()) // 50ml stock 3
	uc := NewInventoryUsecase(repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc.AdjustForSale(ctx, "o1", []SaleLine{{ProductID: "p1", SizeKey: "50ml", Quantity: 1}})
		}()
	}
	wg.Wait()

	p, _ := repo.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 0 {
		t.Errorf("expected stock floored at 0, got %d", p.Sizes[0].Stock)
	}
	if !p.Sizes[0].OutOfStock {
		t.Error("depleted size must be flagged")
	}
}

// internal/application/usecase/cart_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	productdom "essentia/internal/domain/product"
)

func sizedProduct() *productdom.Product {
	return &productdom.Product{
		ID:    "p1",
		Name:  "Noir",
		Price: decimal.NewFromInt(99),
		Sizes: []productdom.Size{
			{Label: "50ml", Price: decimal.NewFromInt(120), Stock: 3},
			{Label: "100ml", Price: decimal.NewFromInt(180), Stock: 5},
		},
	}
}

func newCartFixture() (*CartUsecase, *fakeCartRepo, *fakeCartRepo) {
	users := newFakeCartRepo()
	guests := newFakeCartRepo()
	uc := NewCartUsecaseWithClock(users, guests, newFakeProductRepo(sizedProduct()), fixedClock{testNow}, seqIDs("ci"))
	return uc, users, guests
}

func TestCartAddLine_SnapshotsSizePrice(t *testing.T) {
	uc, users, _ := newCartFixture()
	ctx := context.Background()

	c, err := uc.AddLine(ctx, UserSession("user1"), "p1", "50ml", 2)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Lines))
	}
	if !c.Lines[0].UnitPrice.Equal(decimal.NewFromInt(120)) {
		t.Errorf("expected snapshot price 120, got %s", c.Lines[0].UnitPrice)
	}
	if users.carts["user1"] == nil {
		t.Error("cart must be persisted to the user backend")
	}
}

func TestCartAddLine_EmptySizeKeyUsesLegacyPrice(t *testing.T) {
	uc, _, guests := newCartFixture()

	c, err := uc.AddLine(context.Background(), GuestSession("sess1"), "p1", "", 1)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if !c.Lines[0].UnitPrice.Equal(decimal.NewFromInt(99)) {
		t.Errorf("expected legacy price 99, got %s", c.Lines[0].UnitPrice)
	}
	if guests.carts["sess1"] == nil {
		t.Error("guest cart must be persisted to the guest backend")
	}
}

func TestCartAddLine_UnknownSize(t *testing.T) {
	uc, _, _ := newCartFixture()

	if _, err := uc.AddLine(context.Background(), UserSession("user1"), "p1", "75ml", 1); !errors.Is(err, ErrCartSizeUnknown) {
		t.Errorf("expected ErrCartSizeUnknown, got %v", err)
	}
	if _, err := uc.AddLine(context.Background(), UserSession("user1"), "missing", "50ml", 1); !errors.Is(err, productdom.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCartAddLine_MergesRepeatedSelection(t *testing.T) {
	uc, _, _ := newCartFixture()
	ctx := context.Background()
	mode := UserSession("user1")

	if _, err := uc.AddLine(ctx, mode, "p1", "50ml", 2); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	c, err := uc.AddLine(ctx, mode, "p1", "50ml", 3)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %+v", c.Lines)
	}
	if c.Lines[0].CartItemID != "ci-1" {
		t.Errorf("merge must keep the original cartItemId, got %s", c.Lines[0].CartItemID)
	}
}

func TestCartGet_MaterializesEmptyWithoutPersisting(t *testing.T) {
	uc, users, _ := newCartFixture()

	c, err := uc.Get(context.Background(), UserSession("user1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(c.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(c.Lines))
	}
	if users.upserts != 0 {
		t.Error("Get must not persist the materialized empty cart")
	}
}

func TestCartClear_GuestDeletesRow(t *testing.T) {
	uc, _, guests := newCartFixture()
	ctx := context.Background()
	mode := GuestSession("sess1")

	if _, err := uc.AddLine(ctx, mode, "p1", "50ml", 1); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if err := uc.Clear(ctx, mode); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := guests.carts["sess1"]; ok {
		t.Error("guest cart row must be deleted")
	}
	if guests.deletes != 1 {
		t.Errorf("expected 1 delete, got %d", guests.deletes)
	}
}

func TestCartClear_UserKeepsEmptiedRecord(t *testing.T) {
	uc, users, _ := newCartFixture()
	ctx := context.Background()
	mode := UserSession("user1")

	if _, err := uc.AddLine(ctx, mode, "p1", "50ml", 1); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	if err := uc.Clear(ctx, mode); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	c := users.carts["user1"]
	if c == nil {
		t.Fatal("user cart record must survive a clear")
	}
	if len(c.Lines) != 0 {
		t.Errorf("expected emptied cart, got %d lines", len(c.Lines))
	}
	if users.deletes != 0 {
		t.Error("user clear must not delete the record")
	}
}

func TestCartUpdateQuantity_FloorsAtOne(t *testing.T) {
	uc, _, _ := newCartFixture()
	ctx := context.Background()
	mode := UserSession("user1")

	if _, err := uc.AddLine(ctx, mode, "p1", "50ml", 2); err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	c, err := uc.UpdateQuantity(ctx, mode, "ci-1", -5)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if c.Lines[0].Quantity != 1 {
		t.Errorf("expected floor of 1, got %d", c.Lines[0].Quantity)
	}
}

func TestCartUsecase_InvalidArguments(t *testing.T) {
	uc, _, _ := newCartFixture()
	ctx := context.Background()

	if _, err := uc.Get(ctx, GuestSession("  ")); !errors.Is(err, ErrCartInvalidArgument) {
		t.Errorf("expected ErrCartInvalidArgument, got %v", err)
	}
	if _, err := uc.AddLine(ctx, UserSession("u1"), "", "50ml", 1); !errors.Is(err, ErrCartInvalidArgument) {
		t.Errorf("expected ErrCartInvalidArgument, got %v", err)
	}
	if _, err := uc.AddLine(ctx, UserSession("u1"), "p1", "50ml", 0); !errors.Is(err, ErrCartInvalidArgument) {
		t.Errorf("expected ErrCartInvalidArgument, got %v", err)
	}
	if _, err := uc.RemoveLine(ctx, UserSession("u1"), " "); !errors.Is(err, ErrCartInvalidArgument) {
		t.Errorf("expected ErrCartInvalidArgument, got %v", err)
	}
}

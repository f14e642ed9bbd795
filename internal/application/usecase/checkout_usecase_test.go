// internal/application/usecase/checkout_usecase_test.go
package usecase

import (
	"testing"

	"github.com/shopspring/decimal"

	cartdom "essentia/internal/domain/cart"
)

func testPolicy() CheckoutPolicy {
	return CheckoutPolicy{
		FreeShippingThreshold: decimal.NewFromInt(1000),
		ShippingFee:           decimal.NewFromInt(100),
		GiftWrapFee:           decimal.NewFromInt(100),
	}
}

func cartWithSubtotal(t *testing.T, subtotal int64) *cartdom.Cart {
	t.Helper()
	c, err := cartdom.New("u1", []cartdom.Line{
		{CartItemID: "ci-1", ProductID: "p1", SizeKey: "50ml", Quantity: 1, UnitPrice: decimal.NewFromInt(subtotal)},
	}, testNow)
	if err != nil {
		t.Fatalf("cart fixture: %v", err)
	}
	return c
}

func TestQuote_EmptyCartIsAllZero(t *testing.T) {
	uc := NewCheckoutUsecase(testPolicy())

	for _, c := range []*cartdom.Cart{nil, {ID: "u1"}} {
		totals := uc.Quote(c, true)
		if !totals.Subtotal.IsZero() || !totals.Shipping.IsZero() || !totals.Gift.IsZero() || !totals.Total.IsZero() {
			t.Errorf("empty cart must quote all-zero, got %+v", totals)
		}
	}
}

func TestQuote_ShippingBelowThreshold(t *testing.T) {
	uc := NewCheckoutUsecase(testPolicy())

	totals := uc.Quote(cartWithSubtotal(t, 999), false)
	if !totals.Shipping.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected shipping 100, got %s", totals.Shipping)
	}
	if !totals.Total.Equal(decimal.NewFromInt(1099)) {
		t.Errorf("expected total 1099, got %s", totals.Total)
	}
}

func TestQuote_ZeroSubtotalCartStillShips(t *testing.T) {
	uc := NewCheckoutUsecase(testPolicy())

	// a non-empty cart whose only price was coerced to zero is below the
	// threshold, so the flat fee still applies; only the empty cart is
	// all-zero
	totals := uc.Quote(cartWithSubtotal(t, 0), false)
	if !totals.Subtotal.IsZero() {
		t.Errorf("expected subtotal 0, got %s", totals.Subtotal)
	}
	if !totals.Shipping.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected shipping 100, got %s", totals.Shipping)
	}
	if !totals.Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected total 100, got %s", totals.Total)
	}
}

func TestQuote_FreeShippingAtThreshold(t *testing.T) {
	uc := NewCheckoutUsecase(testPolicy())

	for _, sub := range []int64{1000, 1500} {
		totals := uc.Quote(cartWithSubtotal(t, sub), false)
		if !totals.Shipping.IsZero() {
			t.Errorf("subtotal %d: expected free shipping, got %s", sub, totals.Shipping)
		}
	}
}

func TestQuote_GiftWrapFee(t *testing.T) {
	uc := NewCheckoutUsecase(testPolicy())

	totals := uc.Quote(cartWithSubtotal(t, 1000), true)
	if !totals.Gift.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected gift fee 100, got %s", totals.Gift)
	}
	if !totals.Total.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("expected total 1100, got %s", totals.Total)
	}
}

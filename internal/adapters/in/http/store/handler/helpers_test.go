// internal/adapters/in/http/store/handler/helpers_test.go
package storeHandler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	wishdom "essentia/internal/domain/wishlist"
)

func TestWishlistToDTO_ExposesFullSnapshot(t *testing.T) {
	added := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	wl := &wishdom.Wishlist{
		ID: "user1",
		Items: []wishdom.Item{
			{
				ProductID: "p1",
				Name:      "Noir",
				Price:     decimal.RequireFromString("149.99"),
				Image:     "https://img/1.jpg",
				Badge:     "new",
				Category:  "floral",
				AddedAt:   added,
			},
		},
	}

	out := wishlistToDTO(wl)
	items, ok := out["items"].([]wishlistItemDTO)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 item, got %+v", out["items"])
	}
	it := items[0]
	if it.ProductID != "p1" || it.Name != "Noir" || it.Price != "149.99" {
		t.Errorf("unexpected item: %+v", it)
	}
	if it.Badge != "new" || it.Category != "floral" {
		t.Errorf("badge/category must be rendered, got badge=%q category=%q", it.Badge, it.Category)
	}
	if it.Image != "https://img/1.jpg" || it.AddedAt != "2026-05-01T12:00:00Z" {
		t.Errorf("unexpected item: %+v", it)
	}
	if out["count"] != 1 {
		t.Errorf("expected count 1, got %v", out["count"])
	}
}

func TestWishlistToDTO_NilWishlist(t *testing.T) {
	out := wishlistToDTO(nil)
	items, ok := out["items"].([]wishlistItemDTO)
	if !ok || len(items) != 0 {
		t.Errorf("expected empty items, got %+v", out["items"])
	}
	if out["count"] != 0 {
		t.Errorf("expected count 0, got %v", out["count"])
	}
}

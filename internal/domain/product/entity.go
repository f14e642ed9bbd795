// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct = errors.New("product: invalid")
	ErrNotFound       = errors.New("product: not found")
)

const maxSizeImages = 4

// Size is one sell-able variant of a product (e.g. "50ml").
//
// OutOfStock is monotonic with respect to sales: it is set when stock reaches
// zero and is never cleared by the sale path. It can additionally be forced
// true at stock > 0 by an explicit admin override, and only an explicit admin
// action clears it.
type Size struct {
	Label      string           `json:"size" firestore:"size"`
	Price      decimal.Decimal  `json:"price" firestore:"price"`
	OldPrice   *decimal.Decimal `json:"oldPrice,omitempty" firestore:"oldPrice,omitempty"`
	Stock      int              `json:"stock" firestore:"stock"`
	OutOfStock bool             `json:"isOutOfStock" firestore:"isOutOfStock"`
	Images     []string         `json:"images" firestore:"images"`
}

// Product is a catalog entry.
// Price is the legacy product-level price used when the size system does not
// apply (empty Sizes).
type Product struct {
	ID         string          `json:"id" firestore:"id"`
	Name       string          `json:"name" firestore:"name"`
	Brand      string          `json:"brand" firestore:"brand"`
	Category   string          `json:"category" firestore:"category"`
	Badge      string          `json:"badge" firestore:"badge"`
	Price      decimal.Decimal `json:"price" firestore:"price"`
	Sizes      []Size          `json:"sizes" firestore:"sizes"`
	OutOfStock bool            `json:"isOutOfStock" firestore:"isOutOfStock"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// NormalizeSize applies the defaulting rules for size records once, at the
// boundary, instead of scattering fallbacks at call sites:
// - label trimmed; empty label means the record is unusable
// - negative stock floored to 0
// - stock 0 implies OutOfStock
// - images capped at 4 entries, blanks dropped
func NormalizeSize(s Size) (Size, bool) {
	s.Label = strings.TrimSpace(s.Label)
	if s.Label == "" {
		return Size{}, false
	}
	if s.Price.IsNegative() {
		s.Price = decimal.Zero
	}
	if s.Stock < 0 {
		s.Stock = 0
	}
	if s.Stock <= 0 {
		s.OutOfStock = true
	}

	images := make([]string, 0, len(s.Images))
	for _, img := range s.Images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		images = append(images, img)
		if len(images) == maxSizeImages {
			break
		}
	}
	s.Images = images
	return s, true
}

// Normalize applies NormalizeSize to every size and recomputes the
// product-level flag.
func (p *Product) Normalize() error {
	if p == nil {
		return ErrInvalidProduct
	}
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		return ErrInvalidProduct
	}

	sizes := make([]Size, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		if ns, ok := NormalizeSize(s); ok {
			sizes = append(sizes, ns)
		}
	}
	p.Sizes = sizes
	p.RecomputeOutOfStock()
	return nil
}

// FindSize locates a size by label. Returns the index or -1.
func (p *Product) FindSize(label string) int {
	if p == nil {
		return -1
	}
	label = strings.TrimSpace(label)
	for i := range p.Sizes {
		if p.Sizes[i].Label == label {
			return i
		}
	}
	return -1
}

// ApplySale decrements the stock of the size identified by sizeLabel after a
// confirmed sale of qty units. Returns false when no matching size exists
// (the catalog may have changed since checkout; callers skip silently).
//
// Stock floors at zero. The size flag only ever moves towards true here;
// clearing is an admin action, never a side effect of a sale.
func (p *Product) ApplySale(sizeLabel string, qty int, now time.Time) bool {
	if p == nil || qty <= 0 {
		return false
	}
	idx := p.FindSize(sizeLabel)
	if idx < 0 {
		return false
	}

	newStock := p.Sizes[idx].Stock - qty
	if newStock < 0 {
		newStock = 0
	}
	p.Sizes[idx].Stock = newStock
	p.Sizes[idx].OutOfStock = p.Sizes[idx].OutOfStock || newStock <= 0

	p.RecomputeOutOfStock()
	p.UpdatedAt = now
	return true
}

// SetSizeStock is the admin correction path: sets stock and, optionally, the
// forced out-of-stock override. This is the only way a flag set at stock > 0
// comes into existence, and the only way any flag is cleared.
func (p *Product) SetSizeStock(sizeLabel string, stock int, outOfStock bool, now time.Time) bool {
	if p == nil {
		return false
	}
	idx := p.FindSize(sizeLabel)
	if idx < 0 {
		return false
	}
	if stock < 0 {
		stock = 0
	}
	p.Sizes[idx].Stock = stock
	p.Sizes[idx].OutOfStock = outOfStock || stock <= 0

	p.RecomputeOutOfStock()
	p.UpdatedAt = now
	return true
}

// RecomputeOutOfStock derives the product-level flag: true iff there are no
// sizes or every size is individually out of stock.
func (p *Product) RecomputeOutOfStock() {
	if p == nil {
		return
	}
	if len(p.Sizes) == 0 {
		p.OutOfStock = true
		return
	}
	for _, s := range p.Sizes {
		if !s.OutOfStock {
			p.OutOfStock = false
			return
		}
	}
	p.OutOfStock = true
}

// PriceFor returns the price to snapshot into a cart line for sizeKey.
// Empty sizeKey falls back to the legacy product-level price.
func (p *Product) PriceFor(sizeKey string) (decimal.Decimal, bool) {
	if p == nil {
		return decimal.Zero, false
	}
	key := strings.TrimSpace(sizeKey)
	if key == "" {
		return p.Price, true
	}
	if idx := p.FindSize(key); idx >= 0 {
		return p.Sizes[idx].Price, true
	}
	return decimal.Zero, false
}

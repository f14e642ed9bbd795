// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
	ErrInvalidLine = errors.New("cart: invalid line")
)

// Line represents one (product, size) entry in a cart.
// UnitPrice is snapshotted at add time from the selected size and never
// re-read from the catalog afterwards.
// SizeKey may be empty for legacy sizeless products.
type Line struct {
	CartItemID string          `json:"cartItemId" firestore:"cartItemId"`
	ProductID  string          `json:"productId" firestore:"productId"`
	SizeKey    string          `json:"sizeKey" firestore:"sizeKey"`
	Quantity   int             `json:"quantity" firestore:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" firestore:"unitPrice"`
}

// Cart represents one cart document.
// docId is either the authenticated userId or the anonymous session id,
// depending on which backend holds it; the two are never active at once
// for the same logical cart.
type Cart struct {
	ID    string `json:"id" firestore:"id"`
	Lines []Line `json:"lines" firestore:"lines"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// New creates an empty (or pre-seeded) cart.
// lines can be nil.
func New(id string, lines []Line, now time.Time) (*Cart, error) {
	docID := strings.TrimSpace(id)
	c := &Cart{
		ID:        docID,
		Lines:     cloneLines(lines),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// AddLine merges qty into an existing (productId, sizeKey) line, or appends a
// new line carrying cartItemID and the snapshotted unit price.
// At most one line per (productId, sizeKey) pair ever exists.
func (c *Cart) AddLine(cartItemID, productID, sizeKey string, qty int, unitPrice decimal.Decimal, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	pid := strings.TrimSpace(productID)
	key := strings.TrimSpace(sizeKey)
	if pid == "" || qty <= 0 {
		return ErrInvalidLine
	}

	if idx := findLine(c.Lines, pid, key); idx >= 0 {
		c.Lines[idx].Quantity += qty
		c.touch(now)
		return nil
	}

	itemID := strings.TrimSpace(cartItemID)
	if itemID == "" {
		return ErrInvalidLine
	}
	c.Lines = append(c.Lines, Line{
		CartItemID: itemID,
		ProductID:  pid,
		SizeKey:    key,
		Quantity:   qty,
		UnitPrice:  unitPrice,
	})
	c.touch(now)
	return nil
}

// UpdateQuantity applies delta to the line identified by cartItemID.
// The resulting quantity is floored at 1: a delta that would take it below 1
// is a no-op floor, not a removal. Missing line is a no-op.
func (c *Cart) UpdateQuantity(cartItemID string, delta int, now time.Time) {
	if c == nil {
		return
	}
	id := strings.TrimSpace(cartItemID)
	for i := range c.Lines {
		if c.Lines[i].CartItemID != id {
			continue
		}
		next := c.Lines[i].Quantity + delta
		if next < 1 {
			next = 1
		}
		c.Lines[i].Quantity = next
		c.touch(now)
		return
	}
}

// RemoveLine deletes the line identified by cartItemID. No-op if absent.
func (c *Cart) RemoveLine(cartItemID string, now time.Time) {
	if c == nil {
		return
	}
	id := strings.TrimSpace(cartItemID)
	for i := range c.Lines {
		if c.Lines[i].CartItemID == id {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch(now)
			return
		}
	}
}

// Clear empties the line list.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Lines = []Line{}
	c.touch(now)
}

// Total sums unitPrice * quantity across all lines.
// Negative unit prices (which only appear through malformed stored documents)
// contribute zero so a bad line never corrupts the total.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			continue
		}
		price := l.UnitPrice
		if price.IsNegative() {
			price = decimal.Zero
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Count sums quantities (not line count). Used for the cart badge.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		if l.Quantity > 0 {
			n += l.Quantity
		}
	}
	return n
}

// Merge folds other's lines into c, summing quantities on a
// (productId, sizeKey) match and appending otherwise. Appended lines keep
// their original cartItemId. Used by the merge-on-login reconciler.
func (c *Cart) Merge(other *Cart, now time.Time) {
	if c == nil || other == nil {
		return
	}
	for _, l := range other.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if idx := findLine(c.Lines, l.ProductID, l.SizeKey); idx >= 0 {
			c.Lines[idx].Quantity += l.Quantity
			continue
		}
		c.Lines = append(c.Lines, l)
	}
	c.touch(now)
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func findLine(lines []Line, productID, sizeKey string) int {
	for i := range lines {
		if lines[i].ProductID == productID && lines[i].SizeKey == sizeKey {
			return i
		}
	}
	return -1
}

func cloneLines(src []Line) []Line {
	if len(src) == 0 {
		return []Line{}
	}
	out := make([]Line, 0, len(src))
	for _, l := range src {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 {
			continue
		}
		if idx := findLine(out, l.ProductID, l.SizeKey); idx >= 0 {
			out[idx].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}

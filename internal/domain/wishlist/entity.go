// internal/domain/wishlist/entity.go
package wishlist

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidWishlist = errors.New("wishlist: invalid")

// Item is a snapshot of a product at the moment it was saved. Price is the
// price then, not live.
type Item struct {
	ProductID string          `json:"productId" firestore:"productId"`
	Name      string          `json:"name" firestore:"name"`
	Price     decimal.Decimal `json:"price" firestore:"price"`
	Image     string          `json:"image" firestore:"image"`
	Badge     string          `json:"badge" firestore:"badge"`
	Category  string          `json:"category" firestore:"category"`
	AddedAt   time.Time       `json:"addedAt" firestore:"addedAt"`
}

// Wishlist is the per-user document. docId = userId. Uniqueness by productId.
type Wishlist struct {
	ID    string `json:"id" firestore:"id"`
	Items []Item `json:"items" firestore:"items"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func New(userID string, now time.Time) (*Wishlist, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrInvalidWishlist
	}
	return &Wishlist{
		ID:        uid,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Add saves the snapshot; adding an already-saved productId is a no-op (the
// original snapshot, including its price, wins).
func (w *Wishlist) Add(it Item, now time.Time) error {
	if w == nil {
		return ErrInvalidWishlist
	}
	pid := strings.TrimSpace(it.ProductID)
	if pid == "" {
		return ErrInvalidWishlist
	}
	if w.Has(pid) {
		return nil
	}
	it.ProductID = pid
	it.Name = strings.TrimSpace(it.Name)
	if it.AddedAt.IsZero() {
		it.AddedAt = now
	}
	w.Items = append(w.Items, it)
	w.UpdatedAt = now
	return nil
}

// Remove drops the productId. No-op if absent.
func (w *Wishlist) Remove(productID string, now time.Time) {
	if w == nil {
		return
	}
	pid := strings.TrimSpace(productID)
	for i := range w.Items {
		if w.Items[i].ProductID == pid {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			w.UpdatedAt = now
			return
		}
	}
}

func (w *Wishlist) Has(productID string) bool {
	if w == nil {
		return false
	}
	pid := strings.TrimSpace(productID)
	for i := range w.Items {
		if w.Items[i].ProductID == pid {
			return true
		}
	}
	return false
}

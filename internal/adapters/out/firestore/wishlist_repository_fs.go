// internal/adapters/out/firestore/wishlist_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	wishdom "essentia/internal/domain/wishlist"
)

// WishlistRepositoryFS implements wishlist.Repository.
//
// Collection design:
// - collection: wishlists
// - docId: userId
// Full-document overwrite on every write, same contract as carts.
type WishlistRepositoryFS struct {
	Client *firestore.Client
}

func NewWishlistRepositoryFS(client *firestore.Client) *WishlistRepositoryFS {
	return &WishlistRepositoryFS{Client: client}
}

func (r *WishlistRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("wishlists")
}

// Get returns (nil, nil) if not found.
func (r *WishlistRepositoryFS) Get(ctx context.Context, userID string) (*wishdom.Wishlist, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("wishlist_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("wishlist_repository_fs: userID is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	w := wishlistFromData(snap.Data())
	w.ID = uid
	return w, nil
}

func (r *WishlistRepositoryFS) Upsert(ctx context.Context, w *wishdom.Wishlist) error {
	if r == nil || r.Client == nil {
		return errors.New("wishlist_repository_fs: firestore client is nil")
	}
	if w == nil {
		return errors.New("wishlist_repository_fs: wishlist is nil")
	}
	uid := strings.TrimSpace(w.ID)
	if uid == "" {
		return errors.New("wishlist_repository_fs: Upsert requires wishlist.ID (= userId) as docId")
	}
	_, err := r.col().Doc(uid).Set(ctx, wishlistToDoc(w))
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type wishlistItemDoc struct {
	ProductID string    `firestore:"productId"`
	Name      string    `firestore:"name"`
	Price     string    `firestore:"price"`
	Image     string    `firestore:"image"`
	Badge     string    `firestore:"badge"`
	Category  string    `firestore:"category"`
	AddedAt   time.Time `firestore:"addedAt"`
}

type wishlistDoc struct {
	Items     []wishlistItemDoc `firestore:"items"`
	CreatedAt time.Time         `firestore:"createdAt"`
	UpdatedAt time.Time         `firestore:"updatedAt"`
}

func wishlistToDoc(w *wishdom.Wishlist) wishlistDoc {
	items := make([]wishlistItemDoc, 0, len(w.Items))
	for _, it := range w.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			continue
		}
		items = append(items, wishlistItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.String(),
			Image:     it.Image,
			Badge:     it.Badge,
			Category:  it.Category,
			AddedAt:   it.AddedAt,
		})
	}
	return wishlistDoc{
		Items:     items,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func wishlistFromData(raw map[string]any) *wishdom.Wishlist {
	w := &wishdom.Wishlist{Items: []wishdom.Item{}}
	if raw == nil {
		return w
	}
	if t, ok := asTime(raw["createdAt"]); ok {
		w.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		w.UpdatedAt = t
	}

	for _, m := range asMapSlice(raw["items"]) {
		pid := strings.TrimSpace(asString(m["productId"]))
		if pid == "" {
			continue
		}
		if w.Has(pid) {
			// Duplicate rows from older writers collapse to the first.
			continue
		}
		item := wishdom.Item{
			ProductID: pid,
			Name:      strings.TrimSpace(asString(m["name"])),
			Price:     asDecimal(m["price"]),
			Image:     strings.TrimSpace(asString(m["image"])),
			Badge:     strings.TrimSpace(asString(m["badge"])),
			Category:  strings.TrimSpace(asString(m["category"])),
		}
		if t, ok := asTime(m["addedAt"]); ok {
			item.AddedAt = t
		}
		w.Items = append(w.Items, item)
	}
	return w
}

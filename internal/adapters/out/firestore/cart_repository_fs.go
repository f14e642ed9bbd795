// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "essentia/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository for authenticated users.
//
// Collection design:
// - collection: carts
// - docId: userId (docId is the source of truth)
// - fields: lines(array), createdAt, updatedAt
//
// Every Upsert overwrites the full document. No version field: concurrent
// tabs/devices race last-writer-wins, which the storefront accepts.
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// Get returns (nil, nil) if not found.
func (r *CartRepositoryFS) Get(ctx context.Context, userID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userID is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	// Parse raw data instead of DataTo: documents written before the size
	// system (or with prices stored as numbers) must not 500 the cart read.
	c := cartFromData(snap.Data())
	c.ID = uid
	return c, nil
}

func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}
	uid := strings.TrimSpace(c.ID)
	if uid == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.ID (= userId) as docId")
	}

	// Overwrite full doc (simple & predictable).
	_, err := r.col().Doc(uid).Set(ctx, cartToDoc(c))
	return err
}

func (r *CartRepositoryFS) Delete(ctx context.Context, userID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errors.New("cart_repository_fs: userID is empty")
	}
	_, err := r.col().Doc(uid).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartLineDoc struct {
	CartItemID string `firestore:"cartItemId"`
	ProductID  string `firestore:"productId"`
	SizeKey    string `firestore:"sizeKey"`
	Quantity   int    `firestore:"quantity"`
	// UnitPrice is stored as a decimal string to keep exactness across the
	// wire (Firestore has no decimal type).
	UnitPrice string `firestore:"unitPrice"`
}

type cartDoc struct {
	Lines     []cartLineDoc `firestore:"lines"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

func cartToDoc(c *cartdom.Cart) cartDoc {
	lines := make([]cartLineDoc, 0, len(c.Lines))
	for _, l := range c.Lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 {
			continue
		}
		lines = append(lines, cartLineDoc{
			CartItemID: l.CartItemID,
			ProductID:  l.ProductID,
			SizeKey:    l.SizeKey,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice.String(),
		})
	}
	return cartDoc{
		Lines:     lines,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// cartFromData parses raw document data with backward compatibility:
// quantity may be int64 or float64, unitPrice may be string or number, and
// a malformed price coerces to zero rather than failing the read.
func cartFromData(raw map[string]any) *cartdom.Cart {
	c := &cartdom.Cart{Lines: []cartdom.Line{}}
	if raw == nil {
		return c
	}

	if t, ok := asTime(raw["createdAt"]); ok {
		c.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		c.UpdatedAt = t
	}

	for _, m := range asMapSlice(raw["lines"]) {
		pid := strings.TrimSpace(asString(m["productId"]))
		qty := asInt(m["quantity"])
		if pid == "" || qty <= 0 {
			continue
		}
		c.Lines = append(c.Lines, cartdom.Line{
			CartItemID: strings.TrimSpace(asString(m["cartItemId"])),
			ProductID:  pid,
			SizeKey:    strings.TrimSpace(asString(m["sizeKey"])),
			Quantity:   qty,
			UnitPrice:  asDecimal(m["unitPrice"]),
		})
	}
	return c
}

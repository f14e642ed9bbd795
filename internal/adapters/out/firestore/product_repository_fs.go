// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "essentia/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository.
//
// Collection design:
// - collection: products
// - docId: productId
//
// AdjustInTx is the lost-update guard for stock: the product is re-read
// inside firestore.RunTransaction, mutated, and written back, so concurrent
// sales of the same product serialize on the document.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (*productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	pid := strings.TrimSpace(id)
	if pid == "" {
		return nil, productdom.ErrInvalidProduct
	}

	snap, err := r.col().Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, productdom.ErrNotFound
		}
		return nil, err
	}
	return productFromSnap(snap), nil
}

func (r *ProductRepositoryFS) List(ctx context.Context) ([]*productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	var out []*productdom.Product
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, productFromSnap(snap))
	}
	return out, nil
}

func (r *ProductRepositoryFS) Upsert(ctx context.Context, p *productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if p == nil {
		return productdom.ErrInvalidProduct
	}
	if err := p.Normalize(); err != nil {
		return err
	}
	_, err := r.col().Doc(p.ID).Set(ctx, productToDoc(p))
	return err
}

// AdjustInTx runs mutate against the freshly-read product inside a
// transaction scoped to the single product document. mutate returning false
// commits nothing (e.g. size gone since checkout).
func (r *ProductRepositoryFS) AdjustInTx(ctx context.Context, productID string, mutate func(p *productdom.Product, now time.Time) bool) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return productdom.ErrInvalidProduct
	}

	ref := r.col().Doc(pid)
	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return productdom.ErrNotFound
			}
			return err
		}

		p := productFromSnap(snap)
		if !mutate(p, time.Now().UTC()) {
			return nil
		}

		// Only stock-bearing fields change inside the transaction; write
		// them as a merge so unrelated admin edits are not clobbered.
		return tx.Set(ref, map[string]any{
			"sizes":        sizesToDocs(p.Sizes),
			"isOutOfStock": p.OutOfStock,
			"updatedAt":    p.UpdatedAt,
		}, firestore.MergeAll)
	})
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

func productToDoc(p *productdom.Product) map[string]any {
	return map[string]any{
		"name":         p.Name,
		"brand":        p.Brand,
		"category":     p.Category,
		"badge":        p.Badge,
		"price":        p.Price.String(),
		"sizes":        sizesToDocs(p.Sizes),
		"isOutOfStock": p.OutOfStock,
		"createdAt":    p.CreatedAt,
		"updatedAt":    p.UpdatedAt,
	}
}

func sizesToDocs(sizes []productdom.Size) []map[string]any {
	out := make([]map[string]any, 0, len(sizes))
	for _, s := range sizes {
		d := map[string]any{
			"size":         s.Label,
			"price":        s.Price.String(),
			"stock":        s.Stock,
			"isOutOfStock": s.OutOfStock,
			"images":       s.Images,
		}
		if s.OldPrice != nil {
			d["oldPrice"] = s.OldPrice.String()
		}
		out = append(out, d)
	}
	return out
}

func productFromSnap(snap *firestore.DocumentSnapshot) *productdom.Product {
	raw := snap.Data()
	p := &productdom.Product{ID: snap.Ref.ID}
	if raw == nil {
		p.RecomputeOutOfStock()
		return p
	}

	p.Name = strings.TrimSpace(asString(raw["name"]))
	p.Brand = strings.TrimSpace(asString(raw["brand"]))
	p.Category = strings.TrimSpace(asString(raw["category"]))
	p.Badge = strings.TrimSpace(asString(raw["badge"]))
	p.Price = asDecimal(raw["price"])
	p.OutOfStock = asBool(raw["isOutOfStock"])

	for _, m := range asMapSlice(raw["sizes"]) {
		s := productdom.Size{
			Label:      asString(m["size"]),
			Price:      asDecimal(m["price"]),
			Stock:      asInt(m["stock"]),
			OutOfStock: asBool(m["isOutOfStock"]),
			Images:     asStringSlice(m["images"]),
		}
		if _, ok := m["oldPrice"]; ok {
			op := asDecimal(m["oldPrice"])
			s.OldPrice = &op
		}
		if ns, ok := productdom.NormalizeSize(s); ok {
			p.Sizes = append(p.Sizes, ns)
		}
	}

	if t, ok := asTime(raw["createdAt"]); ok {
		p.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		p.UpdatedAt = t
	}

	// Keep a manual product-level override only if it is at least as strict
	// as the derived value.
	derived := *p
	derived.RecomputeOutOfStock()
	p.OutOfStock = p.OutOfStock || derived.OutOfStock
	return p
}

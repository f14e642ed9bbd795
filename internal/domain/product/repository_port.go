// internal/domain/product/repository_port.go
package product

import (
	"context"
	"time"
)

// Repository is the persistence port for catalog products.
//
// Storage (Firestore):
// - collection: products
// - docId: productId
//
// AdjustInTx is the one correctness-critical operation in the storefront: it
// must be an atomic read-modify-write scoped to the single product document so
// two concurrent sales of the same size never both read a stale stock count.
type Repository interface {
	// GetByID returns (nil, ErrNotFound) when the product does not exist.
	GetByID(ctx context.Context, id string) (*Product, error)

	// List returns the full catalog (the storefront filters in memory).
	List(ctx context.Context) ([]*Product, error)

	// Upsert saves the product (full overwrite).
	Upsert(ctx context.Context, p *Product) error

	// AdjustInTx runs mutate against the freshly-read product inside a
	// transaction scoped to that product document, then commits whatever
	// mutate changed. mutate returning false means "nothing to write"
	// (e.g. the size disappeared) and the transaction commits empty.
	AdjustInTx(ctx context.Context, productID string, mutate func(p *Product, now time.Time) bool) error
}

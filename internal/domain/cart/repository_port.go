// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is a persistence port for Cart.
//
// Two implementations exist, one per session backend:
// - Firestore (authenticated): collection carts, docId = userId
// - Postgres (anonymous): guest_carts table, key = session id
//
// Write contract (both backends):
// - Upsert is a FULL overwrite of the stored record, not a field patch.
// - No version check: concurrent writers race last-writer-wins. This mirrors
//   the accepted behavior of the storefront; do not add optimistic locking
//   here without changing the documented contract.
type Repository interface {
	// Get returns (nil, nil) when no cart exists for id.
	Get(ctx context.Context, id string) (*Cart, error)

	// Upsert saves the cart (create or full overwrite).
	Upsert(ctx context.Context, c *Cart) error

	// Delete removes the record entirely. Deleting a missing cart is not an
	// error.
	Delete(ctx context.Context, id string) error
}

// internal/domain/wishlist/repository_port.go
package wishlist

import "context"

// Repository is the persistence port for Wishlist.
//
// Storage (Firestore):
// - collection: wishlists
// - docId: userId
// Writes are full-document overwrites, same contract as carts.
type Repository interface {
	// Get returns (nil, nil) when no wishlist exists for userID.
	Get(ctx context.Context, userID string) (*Wishlist, error)

	// Upsert saves the wishlist (create or full overwrite).
	Upsert(ctx context.Context, w *Wishlist) error
}

// internal/domain/order/repository_port.go
package order

import (
	"context"
	"time"
)

// StatusPatch is the merge-write applied on a payment callback. Only these
// fields are overlaid onto the stored document; the item/customer snapshot is
// never rewritten by a status change.
type StatusPatch struct {
	Status    Status
	PaymentID string
	UpdatedAt time.Time
}

// Repository is the persistence port for orders.
//
// Storage (Firestore):
// - collection: orders
// - docId: orderId
//
// UpdateStatus must be a field merge (Set with MergeAll), not a document
// replace, so a concurrent admin edit of unrelated fields is not clobbered.
type Repository interface {
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (Order, error)

	// Create writes the full pending order document.
	Create(ctx context.Context, o Order) error

	// UpdateStatus overlays the patch onto the existing document.
	UpdateStatus(ctx context.Context, id string, patch StatusPatch) error

	// ListByUser returns a user's order history, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)

	// ListByStatus is the back-office view.
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
}

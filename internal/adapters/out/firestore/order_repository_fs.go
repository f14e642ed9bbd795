// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderdom "essentia/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository.
//
// Collection design:
// - collection: orders
// - docId: orderId
//
// Create writes the full document once; UpdateStatus is a merge-write so the
// item/customer snapshot is never clobbered by a status change.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(id)
	if oid == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}

	snap, err := r.col().Doc(oid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}

	o := orderFromData(snap.Data())
	o.ID = oid
	return o, nil
}

func (r *OrderRepositoryFS) Create(ctx context.Context, o orderdom.Order) error {
	if r == nil || r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(o.ID)
	if oid == "" {
		return orderdom.ErrInvalidID
	}
	_, err := r.col().Doc(oid).Set(ctx, orderToDoc(o))
	return err
}

// UpdateStatus overlays only the status fields (Set + MergeAll).
func (r *OrderRepositoryFS) UpdateStatus(ctx context.Context, id string, patch orderdom.StatusPatch) error {
	if r == nil || r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(id)
	if oid == "" {
		return orderdom.ErrInvalidID
	}

	fields := map[string]any{
		"status":    string(patch.Status),
		"paymentId": patch.PaymentID,
		"updatedAt": patch.UpdatedAt,
	}
	_, err := r.col().Doc(oid).Set(ctx, fields, firestore.MergeAll)
	return err
}

func (r *OrderRepositoryFS) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("order_repository_fs: userID is empty")
	}
	q := r.col().Where("userId", "==", uid).OrderBy("createdAt", firestore.Desc)
	return r.collect(ctx, q)
}

func (r *OrderRepositoryFS) ListByStatus(ctx context.Context, st orderdom.Status) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	q := r.col().Where("status", "==", string(st)).OrderBy("createdAt", firestore.Desc)
	return r.collect(ctx, q)
}

func (r *OrderRepositoryFS) collect(ctx context.Context, q firestore.Query) ([]orderdom.Order, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	var out []orderdom.Order
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		o := orderFromData(snap.Data())
		o.ID = snap.Ref.ID
		out = append(out, o)
	}
	return out, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

func orderToDoc(o orderdom.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productId": it.ProductID,
			"sizeKey":   it.SizeKey,
			"name":      it.Name,
			"quantity":  it.Quantity,
			"unitPrice": it.UnitPrice.String(),
		})
	}
	return map[string]any{
		"userId":    o.UserID,
		"sessionId": o.SessionID,
		"customerInfo": map[string]any{
			"fullName": o.Customer.FullName,
			"email":    o.Customer.Email,
			"phone":    o.Customer.Phone,
			"address":  o.Customer.Address,
			"city":     o.Customer.City,
			"state":    o.Customer.State,
			"zipCode":  o.Customer.ZipCode,
			"country":  o.Customer.Country,
		},
		"items":        items,
		"subtotal":     o.Totals.Subtotal.String(),
		"shippingCost": o.Totals.Shipping.String(),
		"giftCost":     o.Totals.Gift.String(),
		"total":        o.Totals.Total.String(),
		"paymentId":    o.PaymentID,
		"status":       string(o.Status),
		"createdAt":    o.CreatedAt,
		"updatedAt":    o.UpdatedAt,
	}
}

func orderFromData(raw map[string]any) orderdom.Order {
	o := orderdom.Order{}
	if raw == nil {
		return o
	}

	o.UserID = strings.TrimSpace(asString(raw["userId"]))
	o.SessionID = strings.TrimSpace(asString(raw["sessionId"]))
	o.PaymentID = strings.TrimSpace(asString(raw["paymentId"]))
	o.Status = orderdom.Status(strings.TrimSpace(asString(raw["status"])))

	if ci, ok := raw["customerInfo"].(map[string]any); ok {
		o.Customer = orderdom.CustomerInfo{
			FullName: asString(ci["fullName"]),
			Email:    asString(ci["email"]),
			Phone:    asString(ci["phone"]),
			Address:  asString(ci["address"]),
			City:     asString(ci["city"]),
			State:    asString(ci["state"]),
			ZipCode:  asString(ci["zipCode"]),
			Country:  asString(ci["country"]),
		}
	}

	for _, m := range asMapSlice(raw["items"]) {
		o.Items = append(o.Items, orderdom.ItemSnapshot{
			ProductID: strings.TrimSpace(asString(m["productId"])),
			SizeKey:   strings.TrimSpace(asString(m["sizeKey"])),
			Name:      asString(m["name"]),
			Quantity:  asInt(m["quantity"]),
			UnitPrice: asDecimal(m["unitPrice"]),
		})
	}

	o.Totals.Subtotal = asDecimal(raw["subtotal"])
	o.Totals.Shipping = asDecimal(raw["shippingCost"])
	o.Totals.Gift = asDecimal(raw["giftCost"])
	o.Totals.Total = asDecimal(raw["total"])

	if t, ok := asTime(raw["createdAt"]); ok {
		o.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		o.UpdatedAt = t
	}
	return o
}

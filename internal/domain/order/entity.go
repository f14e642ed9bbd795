// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ========================================
// Status
// ========================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// PendingPaymentID is the placeholder written before the payment widget
// opens; it is replaced by the real gateway reference on success.
const PendingPaymentID = "pending"

// ========================================
// Snapshot structs (stored in Order)
// ========================================

// ItemSnapshot is one purchased line frozen at checkout time.
type ItemSnapshot struct {
	ProductID string          `json:"productId" firestore:"productId"`
	SizeKey   string          `json:"sizeKey" firestore:"sizeKey"`
	Name      string          `json:"name" firestore:"name"`
	Quantity  int             `json:"quantity" firestore:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" firestore:"unitPrice"`
}

// CustomerInfo is the shipping/contact snapshot captured at checkout.
type CustomerInfo struct {
	FullName string `json:"fullName" firestore:"fullName"`
	Email    string `json:"email" firestore:"email"`
	Phone    string `json:"phone" firestore:"phone"`
	Address  string `json:"address" firestore:"address"`
	City     string `json:"city" firestore:"city"`
	State    string `json:"state" firestore:"state"`
	ZipCode  string `json:"zipCode" firestore:"zipCode"`
	Country  string `json:"country" firestore:"country"`
}

// Totals is the checkout breakdown frozen into the order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal" firestore:"subtotal"`
	Shipping decimal.Decimal `json:"shippingCost" firestore:"shippingCost"`
	Gift     decimal.Decimal `json:"giftCost" firestore:"giftCost"`
	Total    decimal.Decimal `json:"total" firestore:"total"`
}

// ========================================
// Entity
// ========================================

// Order lifecycle: created pending before the payment widget opens, then a
// single terminal transition to paid (with the gateway reference) or
// cancelled (widget dismissed). No transition leaves a terminal state.
type Order struct {
	ID string `json:"orderId" firestore:"orderId"`

	// UserID is empty for guest checkout; SessionID is empty for
	// authenticated checkout. Exactly one identifies the cart to clear
	// after payment.
	UserID    string `json:"userId" firestore:"userId"`
	SessionID string `json:"sessionId" firestore:"sessionId"`

	Customer CustomerInfo   `json:"customerInfo" firestore:"customerInfo"`
	Items    []ItemSnapshot `json:"items" firestore:"items"`
	Totals   Totals         `json:"totals" firestore:"totals"`

	PaymentID string `json:"paymentId" firestore:"paymentId"`
	Status    Status `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID       = errors.New("order: invalid id")
	ErrInvalidItems    = errors.New("order: invalid items")
	ErrInvalidItem     = errors.New("order: invalid item snapshot")
	ErrInvalidCustomer = errors.New("order: invalid customerInfo")
	ErrInvalidOwner    = errors.New("order: neither userId nor sessionId set")
	ErrTerminalStatus  = errors.New("order: status is terminal")
	ErrNotFound        = errors.New("order: not found")
)

// ========================================
// Constructor
// ========================================

func New(
	id string,
	userID string,
	sessionID string,
	customer CustomerInfo,
	items []ItemSnapshot,
	totals Totals,
	createdAt time.Time,
) (Order, error) {
	o := Order{
		ID:        strings.TrimSpace(id),
		UserID:    strings.TrimSpace(userID),
		SessionID: strings.TrimSpace(sessionID),
		Customer:  normalizeCustomer(customer),
		Items:     normalizeItems(items),
		Totals:    totals,
		PaymentID: PendingPaymentID,
		Status:    StatusPending,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// ========================================
// Behavior
// ========================================

// MarkPaid records the gateway payment reference. Terminal.
func (o *Order) MarkPaid(paymentID string, now time.Time) error {
	if o.Status != StatusPending {
		return ErrTerminalStatus
	}
	pid := strings.TrimSpace(paymentID)
	if pid == "" || pid == PendingPaymentID {
		return errors.New("order: paid requires a real payment reference")
	}
	o.PaymentID = pid
	o.Status = StatusPaid
	o.UpdatedAt = now.UTC()
	return nil
}

// MarkCancelled records a payment-widget dismissal. Terminal.
func (o *Order) MarkCancelled(now time.Time) error {
	if o.Status != StatusPending {
		return ErrTerminalStatus
	}
	o.Status = StatusCancelled
	o.UpdatedAt = now.UTC()
	return nil
}

// ========================================
// Validation
// ========================================

func (o Order) validate() error {
	if o.ID == "" {
		return ErrInvalidID
	}
	if o.UserID == "" && o.SessionID == "" {
		return ErrInvalidOwner
	}
	if err := validateCustomer(o.Customer); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return ErrInvalidItem
		}
		if it.Quantity <= 0 {
			return ErrInvalidItem
		}
		if it.UnitPrice.IsNegative() {
			return ErrInvalidItem
		}
	}
	return nil
}

func validateCustomer(ci CustomerInfo) error {
	if strings.TrimSpace(ci.FullName) == "" {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(ci.Address) == "" {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(ci.City) == "" {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(ci.Country) == "" {
		return ErrInvalidCustomer
	}
	return nil
}

// ========================================
// Helpers
// ========================================

func normalizeCustomer(ci CustomerInfo) CustomerInfo {
	ci.FullName = strings.TrimSpace(ci.FullName)
	ci.Email = strings.TrimSpace(ci.Email)
	ci.Phone = strings.TrimSpace(ci.Phone)
	ci.Address = strings.TrimSpace(ci.Address)
	ci.City = strings.TrimSpace(ci.City)
	ci.State = strings.TrimSpace(ci.State)
	ci.ZipCode = strings.TrimSpace(ci.ZipCode)
	ci.Country = strings.TrimSpace(ci.Country)
	return ci
}

func normalizeItems(items []ItemSnapshot) []ItemSnapshot {
	out := make([]ItemSnapshot, 0, len(items))
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.SizeKey = strings.TrimSpace(it.SizeKey)
		it.Name = strings.TrimSpace(it.Name)
		out = append(out, it)
	}
	return out
}

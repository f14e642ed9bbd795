// internal/domain/order/entity_test.go
package order

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func validCustomer() CustomerInfo {
	return CustomerInfo{
		FullName: "Ada Example",
		Email:    "ada@example.com",
		Address:  "1 Main St",
		City:     "Springfield",
		Country:  "US",
	}
}

func validItems() []ItemSnapshot {
	return []ItemSnapshot{
		{ProductID: "p1", SizeKey: "50ml", Name: "Noir", Quantity: 2, UnitPrice: decimal.NewFromInt(120)},
	}
}

func TestNew_StartsPendingWithPlaceholderPaymentID(t *testing.T) {
	o, err := New("o1", "user1", "", validCustomer(), validItems(), Totals{}, testNow)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("expected pending, got %s", o.Status)
	}
	if o.PaymentID != PendingPaymentID {
		t.Errorf("expected placeholder paymentId, got %q", o.PaymentID)
	}
}

func TestNew_RequiresOwner(t *testing.T) {
	if _, err := New("o1", "", "", validCustomer(), validItems(), Totals{}, testNow); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("expected ErrInvalidOwner, got %v", err)
	}
}

func TestNew_RequiresCustomerAndItems(t *testing.T) {
	if _, err := New("o1", "u1", "", CustomerInfo{}, validItems(), Totals{}, testNow); !errors.Is(err, ErrInvalidCustomer) {
		t.Errorf("expected ErrInvalidCustomer, got %v", err)
	}
	if _, err := New("o1", "u1", "", validCustomer(), nil, Totals{}, testNow); !errors.Is(err, ErrInvalidItems) {
		t.Errorf("expected ErrInvalidItems, got %v", err)
	}
	bad := []ItemSnapshot{{ProductID: "p1", Quantity: 0}}
	if _, err := New("o1", "u1", "", validCustomer(), bad, Totals{}, testNow); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("expected ErrInvalidItem, got %v", err)
	}
}

func TestMarkPaid(t *testing.T) {
	o, _ := New("o1", "u1", "", validCustomer(), validItems(), Totals{}, testNow)

	if err := o.MarkPaid("pay_123", testNow.Add(time.Minute)); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if o.Status != StatusPaid || o.PaymentID != "pay_123" {
		t.Errorf("unexpected state: %s %q", o.Status, o.PaymentID)
	}

	// terminal: second transition rejected
	if err := o.MarkPaid("pay_456", testNow); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("expected ErrTerminalStatus, got %v", err)
	}
	if err := o.MarkCancelled(testNow); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("expected ErrTerminalStatus, got %v", err)
	}
}

func TestMarkPaid_RejectsPlaceholderReference(t *testing.T) {
	o, _ := New("o1", "u1", "", validCustomer(), validItems(), Totals{}, testNow)
	if err := o.MarkPaid("", testNow); err == nil {
		t.Error("expected error for empty payment reference")
	}
	if err := o.MarkPaid(PendingPaymentID, testNow); err == nil {
		t.Error("expected error for placeholder payment reference")
	}
	if o.Status != StatusPending {
		t.Errorf("failed MarkPaid must leave order pending, got %s", o.Status)
	}
}

func TestMarkCancelled(t *testing.T) {
	o, _ := New("o1", "", "sess1", validCustomer(), validItems(), Totals{}, testNow)
	if err := o.MarkCancelled(testNow.Add(time.Minute)); err != nil {
		t.Fatalf("MarkCancelled failed: %v", err)
	}
	if o.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", o.Status)
	}
	if err := o.MarkPaid("pay_1", testNow); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("cancelled is terminal, got %v", err)
	}
}

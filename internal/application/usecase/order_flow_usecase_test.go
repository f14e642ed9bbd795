// internal/application/usecase/order_flow_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	orderdom "essentia/internal/domain/order"
)

type orderFlowFixture struct {
	flow     *OrderFlowUsecase
	orders   *fakeOrderRepo
	users    *fakeCartRepo
	guests   *fakeCartRepo
	products *fakeProductRepo
	audits   *fakeAuditWriter
	mailer   *fakeMailer
	slept    *[]time.Duration
}

func newOrderFlowFixture() orderFlowFixture {
	orders := newFakeOrderRepo()
	users := newFakeCartRepo()
	guests := newFakeCartRepo()
	products := newFakeProductRepo(sizedProduct())
	audits := &fakeAuditWriter{}
	mailer := &fakeMailer{}

	carts := NewCartUsecaseWithClock(users, guests, products, fixedClock{testNow}, seqIDs("ci"))
	checkout := NewCheckoutUsecase(testPolicy())
	inventory := NewInventoryUsecase(products)

	slept := &[]time.Duration{}
	flow := NewOrderFlowUsecase(orders, carts, checkout, inventory, audits, mailer).
		WithClock(fixedClock{testNow}, seqIDs("order"), func(d time.Duration) {
			*slept = append(*slept, d)
		})

	return orderFlowFixture{
		flow:     flow,
		orders:   orders,
		users:    users,
		guests:   guests,
		products: products,
		audits:   audits,
		mailer:   mailer,
		slept:    slept,
	}
}

func orderCustomer() orderdom.CustomerInfo {
	return orderdom.CustomerInfo{
		FullName: "Ada Example",
		Email:    "ada@example.com",
		Address:  "1 Main St",
		City:     "Springfield",
		Country:  "US",
	}
}

// createPendingOrder puts one 50ml x2 line into the guest cart and creates
// the pending order for it.
func (f orderFlowFixture) createPendingOrder(t *testing.T) orderdom.Order {
	t.Helper()
	ctx := context.Background()
	mode := GuestSession("sess1")

	if _, err := f.flow.carts.AddLine(ctx, mode, "p1", "50ml", 2); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	o, err := f.flow.Create(ctx, CreateOrderInput{
		Mode:     mode,
		Customer: orderCustomer(),
		Names:    map[string]string{"p1": "Noir"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return o
}

func TestOrderCreate_EmptyCart(t *testing.T) {
	f := newOrderFlowFixture()

	_, err := f.flow.Create(context.Background(), CreateOrderInput{
		Mode:     GuestSession("sess1"),
		Customer: orderCustomer(),
	})
	if !errors.Is(err, ErrOrderFlowEmptyCart) {
		t.Errorf("expected ErrOrderFlowEmptyCart, got %v", err)
	}
}

func TestOrderCreate_SnapshotsCartAndTotals(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)

	if o.Status != orderdom.StatusPending || o.PaymentID != orderdom.PendingPaymentID {
		t.Errorf("new order must be pending with placeholder paymentId, got %s %q", o.Status, o.PaymentID)
	}
	if len(o.Items) != 1 || o.Items[0].Name != "Noir" || o.Items[0].Quantity != 2 {
		t.Errorf("unexpected item snapshot: %+v", o.Items)
	}
	// subtotal 240 < 1000 threshold, shipping applies
	if !o.Totals.Subtotal.Equal(decimal.NewFromInt(240)) || !o.Totals.Total.Equal(decimal.NewFromInt(340)) {
		t.Errorf("unexpected totals: %+v", o.Totals)
	}
	if o.SessionID != "sess1" || o.UserID != "" {
		t.Errorf("guest order must carry the session id, got user=%q session=%q", o.UserID, o.SessionID)
	}

	// the cart is untouched until the success callback
	if f.guests.carts["sess1"] == nil || len(f.guests.carts["sess1"].Lines) != 1 {
		t.Error("cart must survive order creation")
	}
}

func TestOrderCreate_GiftWrapAboveFreeShippingThreshold(t *testing.T) {
	f := newOrderFlowFixture()
	ctx := context.Background()
	mode := UserSession("user1")

	// 180 x 6 = 1080, over the 1000 threshold
	if _, err := f.flow.carts.AddLine(ctx, mode, "p1", "100ml", 6); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	o, err := f.flow.Create(ctx, CreateOrderInput{
		Mode:     mode,
		Customer: orderCustomer(),
		GiftWrap: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !o.Totals.Shipping.IsZero() {
		t.Errorf("expected free shipping, got %s", o.Totals.Shipping)
	}
	if !o.Totals.Gift.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected gift fee 100, got %s", o.Totals.Gift)
	}
	if !o.Totals.Total.Equal(decimal.NewFromInt(1180)) {
		t.Errorf("expected total 1180, got %s", o.Totals.Total)
	}
	if o.UserID != "user1" || o.SessionID != "" {
		t.Errorf("user order must carry the user id, got user=%q session=%q", o.UserID, o.SessionID)
	}
}

func TestHandlePaymentSuccess_SideEffects(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)
	ctx := context.Background()

	err := f.flow.HandlePaymentSuccess(ctx, PaymentSuccessInput{
		OrderID:   o.ID,
		PaymentID: "pay_1",
		AmountMin: 34000,
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("HandlePaymentSuccess failed: %v", err)
	}

	stored, _ := f.orders.GetByID(ctx, o.ID)
	if stored.Status != orderdom.StatusPaid || stored.PaymentID != "pay_1" {
		t.Errorf("expected paid order, got %s %q", stored.Status, stored.PaymentID)
	}

	if len(f.audits.captures) != 1 || f.audits.captures[0].AmountMin != 34000 {
		t.Errorf("expected one capture record, got %+v", f.audits.captures)
	}

	p, _ := f.products.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 1 {
		t.Errorf("expected stock 3-2=1, got %d", p.Sizes[0].Stock)
	}

	if _, ok := f.guests.carts["sess1"]; ok {
		t.Error("guest cart must be cleared after payment")
	}

	if len(f.mailer.sent) != 1 || f.mailer.sent[0].to != "ada@example.com" {
		t.Errorf("expected one confirmation mail, got %+v", f.mailer.sent)
	}
}

func TestHandlePaymentSuccess_ReplayIsIdempotent(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)
	ctx := context.Background()

	in := PaymentSuccessInput{OrderID: o.ID, PaymentID: "pay_1", AmountMin: 34000, Currency: "usd"}
	if err := f.flow.HandlePaymentSuccess(ctx, in); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	if err := f.flow.HandlePaymentSuccess(ctx, in); err != nil {
		t.Fatalf("replay must be acknowledged, got %v", err)
	}

	// side effects fired exactly once
	if len(f.audits.captures) != 1 {
		t.Errorf("expected one capture record, got %d", len(f.audits.captures))
	}
	if len(f.mailer.sent) != 1 {
		t.Errorf("expected one mail, got %d", len(f.mailer.sent))
	}
	p, _ := f.products.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 1 {
		t.Errorf("stock must not be decremented twice, got %d", p.Sizes[0].Stock)
	}
}

func TestHandlePaymentSuccess_ConflictingReferenceIsTerminal(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)
	ctx := context.Background()

	if err := f.flow.HandlePaymentSuccess(ctx, PaymentSuccessInput{OrderID: o.ID, PaymentID: "pay_1"}); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	err := f.flow.HandlePaymentSuccess(ctx, PaymentSuccessInput{OrderID: o.ID, PaymentID: "pay_other"})
	if !errors.Is(err, orderdom.ErrTerminalStatus) {
		t.Errorf("expected ErrTerminalStatus, got %v", err)
	}
}

func TestHandlePaymentSuccess_RetriesStatusUpdate(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)

	f.orders.updateFails = 2
	f.orders.updateErr = errors.New("firestore unavailable")

	err := f.flow.HandlePaymentSuccess(context.Background(), PaymentSuccessInput{OrderID: o.ID, PaymentID: "pay_1"})
	if err != nil {
		t.Fatalf("third attempt should succeed, got %v", err)
	}

	want := []time.Duration{300 * time.Millisecond, 600 * time.Millisecond}
	if len(*f.slept) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %v", len(want), *f.slept)
	}
	for i, d := range want {
		if (*f.slept)[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, (*f.slept)[i])
		}
	}
}

func TestHandlePaymentSuccess_ExhaustionQueuesSyncFailure(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)
	ctx := context.Background()

	f.orders.updateFails = 3
	f.orders.updateErr = errors.New("firestore unavailable")

	err := f.flow.HandlePaymentSuccess(ctx, PaymentSuccessInput{OrderID: o.ID, PaymentID: "pay_1"})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}

	if len(f.audits.failures) != 1 {
		t.Fatalf("expected one sync failure record, got %d", len(f.audits.failures))
	}
	fr := f.audits.failures[0]
	if fr.OrderID != o.ID || fr.PaymentID != "pay_1" || fr.WantStatus != orderdom.StatusPaid {
		t.Errorf("unexpected sync failure record: %+v", fr)
	}

	// no side effects after a failed status write
	if len(f.audits.captures) != 0 || len(f.mailer.sent) != 0 {
		t.Error("side effects must not fire when the status update fails")
	}
	p, _ := f.products.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 3 {
		t.Errorf("stock must be untouched, got %d", p.Sizes[0].Stock)
	}
	if _, ok := f.guests.carts["sess1"]; !ok {
		t.Error("cart must be untouched")
	}
}

func TestHandlePaymentSuccess_AuditFailureDoesNotBlock(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)

	f.audits.captureErr = errors.New("audit store down")

	if err := f.flow.HandlePaymentSuccess(context.Background(), PaymentSuccessInput{OrderID: o.ID, PaymentID: "pay_1"}); err != nil {
		t.Fatalf("audit write is best-effort, got %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Error("remaining side effects must still fire")
	}
}

func TestHandlePaymentDismissed(t *testing.T) {
	f := newOrderFlowFixture()
	o := f.createPendingOrder(t)
	ctx := context.Background()

	if err := f.flow.HandlePaymentDismissed(ctx, o.ID); err != nil {
		t.Fatalf("HandlePaymentDismissed failed: %v", err)
	}
	stored, _ := f.orders.GetByID(ctx, o.ID)
	if stored.Status != orderdom.StatusCancelled {
		t.Errorf("expected cancelled, got %s", stored.Status)
	}

	// idempotent replay
	if err := f.flow.HandlePaymentDismissed(ctx, o.ID); err != nil {
		t.Errorf("cancelled replay must be acknowledged, got %v", err)
	}

	// stock and the cart are untouched on dismissal
	p, _ := f.products.GetByID(ctx, "p1")
	if p.Sizes[0].Stock != 3 {
		t.Errorf("stock must be untouched, got %d", p.Sizes[0].Stock)
	}
	if _, ok := f.guests.carts["sess1"]; !ok {
		t.Error("cart must survive a dismissal")
	}
}

func TestHandlePaymentCallbacks_UnknownOrder(t *testing.T) {
	f := newOrderFlowFixture()
	ctx := context.Background()

	err := f.flow.HandlePaymentSuccess(ctx, PaymentSuccessInput{OrderID: "missing", PaymentID: "pay_1"})
	if !errors.Is(err, orderdom.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := f.flow.HandlePaymentDismissed(ctx, "missing"); !errors.Is(err, orderdom.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := f.flow.HandlePaymentSuccess(ctx, PaymentSuccessInput{OrderID: "o1", PaymentID: ""}); !errors.Is(err, ErrOrderFlowInvalidArgument) {
		t.Errorf("expected ErrOrderFlowInvalidArgument, got %v", err)
	}
}

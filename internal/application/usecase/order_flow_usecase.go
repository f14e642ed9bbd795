// internal/application/usecase/order_flow_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	orderdom "essentia/internal/domain/order"
)

var (
	ErrOrderFlowInvalidArgument = errors.New("order_flow: invalid argument")
	ErrOrderFlowEmptyCart       = errors.New("order_flow: cart is empty")
)

const (
	statusUpdateAttempts  = 3
	statusUpdateBaseDelay = 300 * time.Millisecond
)

// PaymentAudit is the observability record written after a successful
// capture. Best-effort: it is not a ledger of record.
type PaymentAudit struct {
	PaymentID string
	OrderID   string
	AmountMin int64 // integer minor units, as the gateway reports it
	Currency  string
	CreatedAt time.Time
}

// SyncFailure is the durable fallback written when the post-payment status
// update exhausts its retries. Money has already moved at the gateway, so
// the intended update is queued here for later reconciliation.
type SyncFailure struct {
	OrderID    string
	PaymentID  string
	WantStatus orderdom.Status
	Reason     string
	CreatedAt  time.Time
}

// AuditWriter is the outbound port for both records.
type AuditWriter interface {
	RecordCapture(ctx context.Context, a PaymentAudit) error
	RecordSyncFailure(ctx context.Context, f SyncFailure) error
}

// Mailer sends the best-effort order confirmation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// OrderFlowUsecase manages the order lifecycle around the asynchronous
// payment callback: create pending before the widget opens, then a single
// terminal merge-write to paid or cancelled when the gateway reports back.
type OrderFlowUsecase struct {
	orders    orderdom.Repository
	carts     *CartUsecase
	checkout  *CheckoutUsecase
	inventory *InventoryUsecase
	audits    AuditWriter
	mailer    Mailer

	clock Clock
	newID func() string
	sleep func(d time.Duration)
}

func NewOrderFlowUsecase(
	orders orderdom.Repository,
	carts *CartUsecase,
	checkout *CheckoutUsecase,
	inventory *InventoryUsecase,
	audits AuditWriter,
	mailer Mailer,
) *OrderFlowUsecase {
	return &OrderFlowUsecase{
		orders:    orders,
		carts:     carts,
		checkout:  checkout,
		inventory: inventory,
		audits:    audits,
		mailer:    mailer,
		clock:     systemClock{},
		newID:     uuid.NewString,
		sleep:     time.Sleep,
	}
}

// WithClock overrides time and sleep sources. For tests.
func (u *OrderFlowUsecase) WithClock(clock Clock, newID func() string, sleep func(time.Duration)) *OrderFlowUsecase {
	if clock != nil {
		u.clock = clock
	}
	if newID != nil {
		u.newID = newID
	}
	if sleep != nil {
		u.sleep = sleep
	}
	return u
}

// =======================
// Create (pending)
// =======================

type CreateOrderInput struct {
	Mode     SessionMode
	Customer orderdom.CustomerInfo
	GiftWrap bool

	// Names maps productId -> display name for the item snapshot. Optional;
	// missing entries leave the snapshot name empty.
	Names map[string]string
}

// Create snapshots the current cart into a pending order, before the payment
// widget is shown. The cart itself is untouched until the success callback.
func (u *OrderFlowUsecase) Create(ctx context.Context, in CreateOrderInput) (orderdom.Order, error) {
	if !in.Mode.Valid() {
		return orderdom.Order{}, ErrOrderFlowInvalidArgument
	}

	c, err := u.carts.Get(ctx, in.Mode)
	if err != nil {
		return orderdom.Order{}, fmt.Errorf("order_flow: read cart: %w", err)
	}
	if len(c.Lines) == 0 {
		return orderdom.Order{}, ErrOrderFlowEmptyCart
	}

	totals := u.checkout.Quote(c, in.GiftWrap)

	items := make([]orderdom.ItemSnapshot, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, orderdom.ItemSnapshot{
			ProductID: l.ProductID,
			SizeKey:   l.SizeKey,
			Name:      in.Names[l.ProductID],
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	userID := ""
	sessionID := ""
	if in.Mode.IsUser() {
		userID = in.Mode.Key()
	} else {
		sessionID = in.Mode.Key()
	}

	o, err := orderdom.New(u.newID(), userID, sessionID, in.Customer, items, totals, u.clock.Now())
	if err != nil {
		return orderdom.Order{}, err
	}
	if err := u.orders.Create(ctx, o); err != nil {
		return orderdom.Order{}, fmt.Errorf("order_flow: create order: %w", err)
	}

	log.Printf("[order_flow] order created id=%s items=%d total=%s", o.ID, len(o.Items), o.Totals.Total.String())
	return o, nil
}

// =======================
// Payment callbacks
// =======================

// PaymentSuccessInput carries the gateway's success callback payload.
type PaymentSuccessInput struct {
	OrderID   string
	PaymentID string
	AmountMin int64
	Currency  string
}

// HandlePaymentSuccess transitions the order to paid, then fires the
// post-payment side effects: best-effort audit record, stock adjustment,
// cart clear, best-effort confirmation mail.
//
// The status write is the only retried persistence call in the module: the
// money has already moved, so exhaustion queues a sync-failure record and
// the error is propagated, never swallowed.
func (u *OrderFlowUsecase) HandlePaymentSuccess(ctx context.Context, in PaymentSuccessInput) error {
	oid := strings.TrimSpace(in.OrderID)
	pid := strings.TrimSpace(in.PaymentID)
	if oid == "" || pid == "" {
		return ErrOrderFlowInvalidArgument
	}

	o, err := u.orders.GetByID(ctx, oid)
	if err != nil {
		return fmt.Errorf("order_flow: read order: %w", err)
	}

	// The gateway fires each callback once, but be safe against replays.
	if o.Status == orderdom.StatusPaid && o.PaymentID == pid {
		return nil
	}

	now := u.clock.Now()
	if err := o.MarkPaid(pid, now); err != nil {
		return err
	}

	patch := orderdom.StatusPatch{Status: orderdom.StatusPaid, PaymentID: pid, UpdatedAt: o.UpdatedAt}
	if err := u.updateStatusWithRetry(ctx, oid, patch); err != nil {
		u.recordSyncFailure(ctx, oid, pid, orderdom.StatusPaid, err)
		return fmt.Errorf("order_flow: status update exhausted retries: %w", err)
	}

	// (a) audit record: observability only, failure ignored.
	if u.audits != nil {
		audit := PaymentAudit{
			PaymentID: pid,
			OrderID:   oid,
			AmountMin: in.AmountMin,
			Currency:  strings.TrimSpace(in.Currency),
			CreatedAt: now,
		}
		if aerr := u.audits.RecordCapture(ctx, audit); aerr != nil {
			log.Printf("[order_flow] WARN: payment audit write failed order=%s err=%v", oid, aerr)
		}
	}

	// (b) stock decrement, one transaction per product.
	if u.inventory != nil {
		lines := make([]SaleLine, 0, len(o.Items))
		for _, it := range o.Items {
			lines = append(lines, SaleLine{ProductID: it.ProductID, SizeKey: it.SizeKey, Quantity: it.Quantity})
		}
		u.inventory.AdjustForSale(ctx, oid, lines)
	}

	// (c) clear the purchaser's cart.
	if u.carts != nil {
		mode := UserSession(o.UserID)
		if !mode.Valid() {
			mode = GuestSession(o.SessionID)
		}
		if cerr := u.carts.Clear(ctx, mode); cerr != nil {
			log.Printf("[order_flow] WARN: cart clear failed order=%s err=%v", oid, cerr)
		}
	}

	// (d) confirmation mail, non-blocking semantics: failure ignored.
	if u.mailer != nil && o.Customer.Email != "" {
		subject := fmt.Sprintf("Your order %s is confirmed", oid)
		body := fmt.Sprintf("Thank you %s! Payment %s received, total %s.", o.Customer.FullName, pid, o.Totals.Total.String())
		if merr := u.mailer.Send(ctx, o.Customer.Email, subject, body); merr != nil {
			log.Printf("[order_flow] WARN: confirmation mail failed order=%s err=%v", oid, merr)
		}
	}

	log.Printf("[order_flow] order paid id=%s payment=%s", oid, pid)
	return nil
}

// HandlePaymentDismissed transitions the order to cancelled. Stock and the
// cart are untouched.
func (u *OrderFlowUsecase) HandlePaymentDismissed(ctx context.Context, orderID string) error {
	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return ErrOrderFlowInvalidArgument
	}

	o, err := u.orders.GetByID(ctx, oid)
	if err != nil {
		return fmt.Errorf("order_flow: read order: %w", err)
	}
	if o.Status == orderdom.StatusCancelled {
		return nil
	}

	now := u.clock.Now()
	if err := o.MarkCancelled(now); err != nil {
		return err
	}

	patch := orderdom.StatusPatch{Status: orderdom.StatusCancelled, PaymentID: o.PaymentID, UpdatedAt: o.UpdatedAt}
	if err := u.updateStatusWithRetry(ctx, oid, patch); err != nil {
		u.recordSyncFailure(ctx, oid, o.PaymentID, orderdom.StatusCancelled, err)
		return fmt.Errorf("order_flow: status update exhausted retries: %w", err)
	}

	log.Printf("[order_flow] order cancelled id=%s", oid)
	return nil
}

// =======================
// Queries
// =======================

func (u *OrderFlowUsecase) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	return u.orders.GetByID(ctx, strings.TrimSpace(id))
}

func (u *OrderFlowUsecase) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrOrderFlowInvalidArgument
	}
	return u.orders.ListByUser(ctx, uid)
}

func (u *OrderFlowUsecase) ListByStatus(ctx context.Context, status orderdom.Status) ([]orderdom.Order, error) {
	return u.orders.ListByStatus(ctx, status)
}

// =======================
// Helpers
// =======================

func (u *OrderFlowUsecase) updateStatusWithRetry(ctx context.Context, orderID string, patch orderdom.StatusPatch) error {
	var lastErr error
	delay := statusUpdateBaseDelay
	for attempt := 1; attempt <= statusUpdateAttempts; attempt++ {
		lastErr = u.orders.UpdateStatus(ctx, orderID, patch)
		if lastErr == nil {
			return nil
		}
		log.Printf("[order_flow] status update attempt %d/%d failed order=%s err=%v", attempt, statusUpdateAttempts, orderID, lastErr)
		if attempt < statusUpdateAttempts {
			u.sleep(delay)
			delay *= 2
		}
	}
	return lastErr
}

func (u *OrderFlowUsecase) recordSyncFailure(ctx context.Context, orderID, paymentID string, want orderdom.Status, cause error) {
	if u.audits == nil {
		return
	}
	f := SyncFailure{
		OrderID:    orderID,
		PaymentID:  paymentID,
		WantStatus: want,
		Reason:     cause.Error(),
		CreatedAt:  u.clock.Now(),
	}
	if err := u.audits.RecordSyncFailure(ctx, f); err != nil {
		log.Printf("[order_flow] WARN: sync failure record write failed order=%s err=%v", orderID, err)
	}
}

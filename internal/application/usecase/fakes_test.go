// internal/application/usecase/fakes_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	cartdom "essentia/internal/domain/cart"
	orderdom "essentia/internal/domain/order"
	productdom "essentia/internal/domain/product"
	wishdom "essentia/internal/domain/wishlist"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// =======================
// cart repository fake
// =======================

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*cartdom.Cart

	getErr    error
	upsertErr error
	deleteErr error

	upserts int
	deletes int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*cartdom.Cart{}}
}

func (r *fakeCartRepo) Get(ctx context.Context, id string) (*cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.carts[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCartRepo) Upsert(ctx context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.carts[c.ID] = c
	return nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.carts, id)
	return nil
}

// =======================
// product repository fake
// =======================

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*productdom.Product

	adjustErr   error
	adjustCalls int
}

func newFakeProductRepo(ps ...*productdom.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*productdom.Product{}}
	for _, p := range ps {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, productdom.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(ctx context.Context) ([]*productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*productdom.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Upsert(ctx context.Context, p *productdom.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) AdjustInTx(ctx context.Context, productID string, mutate func(p *productdom.Product, now time.Time) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustCalls++
	if r.adjustErr != nil {
		return r.adjustErr
	}
	p, ok := r.products[productID]
	if !ok {
		return productdom.ErrNotFound
	}
	if mutate(p, testNow) {
		r.products[productID] = p
	}
	return nil
}

// =======================
// order repository fake
// =======================

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]orderdom.Order

	createErr error

	// updateFails makes the first N UpdateStatus calls fail with updateErr.
	updateFails int
	updateErr   error
	updateCalls int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]orderdom.Order{}}
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) Create(ctx context.Context, o orderdom.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, patch orderdom.StatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateCalls <= r.updateFails {
		return r.updateErr
	}
	o, ok := r.orders[id]
	if !ok {
		return orderdom.ErrNotFound
	}
	o.Status = patch.Status
	o.PaymentID = patch.PaymentID
	o.UpdatedAt = patch.UpdatedAt
	r.orders[id] = o
	return nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdom.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByStatus(ctx context.Context, status orderdom.Status) ([]orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdom.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// =======================
// audit / mail fakes
// =======================

type fakeAuditWriter struct {
	mu       sync.Mutex
	captures []PaymentAudit
	failures []SyncFailure

	captureErr error
}

func (w *fakeAuditWriter) RecordCapture(ctx context.Context, a PaymentAudit) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.captureErr != nil {
		return w.captureErr
	}
	w.captures = append(w.captures, a)
	return nil
}

func (w *fakeAuditWriter) RecordSyncFailure(ctx context.Context, f SyncFailure) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures = append(w.failures, f)
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// =======================
// wishlist repository fake
// =======================

type fakeWishlistRepo struct {
	lists map[string]*wishdom.Wishlist
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{lists: map[string]*wishdom.Wishlist{}}
}

func (r *fakeWishlistRepo) Get(ctx context.Context, userID string) (*wishdom.Wishlist, error) {
	w, ok := r.lists[userID]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *fakeWishlistRepo) Upsert(ctx context.Context, w *wishdom.Wishlist) error {
	r.lists[w.ID] = w
	return nil
}

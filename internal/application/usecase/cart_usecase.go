// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	cartdom "essentia/internal/domain/cart"
	productdom "essentia/internal/domain/product"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartSizeUnknown     = errors.New("cart_usecase: unknown size for product")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartUsecase coordinates cart operations over the two session backends.
// Quantity is not validated against stock at this layer; the inventory
// adjuster floors at zero after payment.
type CartUsecase struct {
	users    cartdom.Repository
	guests   cartdom.Repository
	products productdom.Repository
	clock    Clock
	newID    func() string
}

func NewCartUsecase(users, guests cartdom.Repository, products productdom.Repository) *CartUsecase {
	return &CartUsecase{
		users:    users,
		guests:   guests,
		products: products,
		clock:    systemClock{},
		newID:    uuid.NewString,
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(users, guests cartdom.Repository, products productdom.Repository, clock Clock, newID func() string) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &CartUsecase{users: users, guests: guests, products: products, clock: clock, newID: newID}
}

func (uc *CartUsecase) repoFor(mode SessionMode) cartdom.Repository {
	if mode.IsUser() {
		return uc.users
	}
	return uc.guests
}

// Get returns the cart for the session, materializing an empty one in memory
// (not persisted) when none exists yet.
func (uc *CartUsecase) Get(ctx context.Context, mode SessionMode) (*cartdom.Cart, error) {
	if !mode.Valid() {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repoFor(mode).Get(ctx, mode.Key())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.New(mode.Key(), nil, uc.clock.Now())
	}
	return c, nil
}

// AddLine snapshots the selected size's price (or the legacy product price
// when sizeKey is empty) and merges qty into the cart.
func (uc *CartUsecase) AddLine(ctx context.Context, mode SessionMode, productID, sizeKey string, qty int) (*cartdom.Cart, error) {
	pid := strings.TrimSpace(productID)
	if !mode.Valid() || pid == "" || qty <= 0 {
		return nil, ErrCartInvalidArgument
	}

	p, err := uc.products.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	price, ok := p.PriceFor(sizeKey)
	if !ok {
		return nil, ErrCartSizeUnknown
	}

	now := uc.clock.Now()
	c, err := uc.Get(ctx, mode)
	if err != nil {
		return nil, err
	}
	if err := c.AddLine(uc.newID(), pid, sizeKey, qty, price, now); err != nil {
		return nil, err
	}
	if err := uc.repoFor(mode).Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity applies delta with a floor of 1.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, mode SessionMode, cartItemID string, delta int) (*cartdom.Cart, error) {
	if !mode.Valid() || strings.TrimSpace(cartItemID) == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Get(ctx, mode)
	if err != nil {
		return nil, err
	}
	c.UpdateQuantity(cartItemID, delta, uc.clock.Now())
	if err := uc.repoFor(mode).Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveLine deletes the line. No-op if absent.
func (uc *CartUsecase) RemoveLine(ctx context.Context, mode SessionMode, cartItemID string) (*cartdom.Cart, error) {
	if !mode.Valid() || strings.TrimSpace(cartItemID) == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Get(ctx, mode)
	if err != nil {
		return nil, err
	}
	c.RemoveLine(cartItemID, uc.clock.Now())
	if err := uc.repoFor(mode).Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the cart: authenticated carts are reset to an empty item
// list (the user record survives), guest carts are deleted outright.
func (uc *CartUsecase) Clear(ctx context.Context, mode SessionMode) error {
	if !mode.Valid() {
		return ErrCartInvalidArgument
	}

	if !mode.IsUser() {
		return uc.guests.Delete(ctx, mode.Key())
	}

	c, err := uc.users.Get(ctx, mode.Key())
	if err != nil {
		return err
	}
	now := uc.clock.Now()
	if c == nil {
		c, err = cartdom.New(mode.Key(), nil, now)
		if err != nil {
			return err
		}
	}
	c.Clear(now)
	return uc.users.Upsert(ctx, c)
}

// internal/application/usecase/wishlist_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	productdom "essentia/internal/domain/product"
	wishdom "essentia/internal/domain/wishlist"
)

var ErrWishlistInvalidArgument = errors.New("wishlist_usecase: invalid argument")

// WishlistUsecase maintains the per-user saved-products document.
// Authenticated users only; the storefront has no guest wishlist.
type WishlistUsecase struct {
	repo     wishdom.Repository
	products productdom.Repository
	clock    Clock
}

func NewWishlistUsecase(repo wishdom.Repository, products productdom.Repository) *WishlistUsecase {
	return &WishlistUsecase{repo: repo, products: products, clock: systemClock{}}
}

func NewWishlistUsecaseWithClock(repo wishdom.Repository, products productdom.Repository, clock Clock) *WishlistUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &WishlistUsecase{repo: repo, products: products, clock: clock}
}

func (uc *WishlistUsecase) Get(ctx context.Context, userID string) (*wishdom.Wishlist, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrWishlistInvalidArgument
	}
	w, err := uc.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return wishdom.New(uid, uc.clock.Now())
	}
	return w, nil
}

// Add snapshots the product (name, current price, first image, badge,
// category) into the wishlist. Duplicate productIds are a no-op.
func (uc *WishlistUsecase) Add(ctx context.Context, userID, productID string) (*wishdom.Wishlist, error) {
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return nil, ErrWishlistInvalidArgument
	}

	p, err := uc.products.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	w, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	item := wishdom.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     snapshotPrice(p),
		Image:     firstImage(p),
		Badge:     p.Badge,
		Category:  p.Category,
		AddedAt:   now,
	}
	if err := w.Add(item, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (uc *WishlistUsecase) Remove(ctx context.Context, userID, productID string) (*wishdom.Wishlist, error) {
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return nil, ErrWishlistInvalidArgument
	}

	w, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	w.Remove(pid, uc.clock.Now())
	if err := uc.repo.Upsert(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// snapshotPrice picks the price to freeze: the first size's price when the
// size system applies, otherwise the legacy product price.
func snapshotPrice(p *productdom.Product) decimal.Decimal {
	if len(p.Sizes) > 0 {
		return p.Sizes[0].Price
	}
	return p.Price
}

func firstImage(p *productdom.Product) string {
	for _, s := range p.Sizes {
		if len(s.Images) > 0 {
			return s.Images[0]
		}
	}
	return ""
}

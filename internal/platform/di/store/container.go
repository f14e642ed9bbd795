// internal/platform/di/store/container.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	dbout "essentia/internal/adapters/out/db"
	fsout "essentia/internal/adapters/out/firestore"
	gcsout "essentia/internal/adapters/out/gcs"
	mailout "essentia/internal/adapters/out/mail"
	catalogquery "essentia/internal/application/query/catalog"
	usecase "essentia/internal/application/usecase"
	shared "essentia/internal/platform/di/shared"
)

// Container wires the store service: repositories, usecases and queries.
type Container struct {
	Infra *shared.Infra

	// repositories
	UserCarts  *fsout.CartRepositoryFS
	GuestCarts *dbout.GuestCartRepositoryPG
	Products   *fsout.ProductRepositoryFS
	Orders     *fsout.OrderRepositoryFS
	Wishlists  *fsout.WishlistRepositoryFS
	Audits     *fsout.PaymentAuditRepositoryFS
	Media      *gcsout.ProductMediaRepositoryGCS

	// application
	Cart      *usecase.CartUsecase
	CartMerge *usecase.CartMergeUsecase
	Checkout  *usecase.CheckoutUsecase
	Inventory *usecase.InventoryUsecase
	Wishlist  *usecase.WishlistUsecase
	OrderFlow *usecase.OrderFlowUsecase
	Catalog   *catalogquery.Query
}

// NewContainer builds the store container from shared infra.
func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		return nil, errors.New("di.store: infra is nil")
	}
	if infra.Firestore == nil {
		return nil, errors.New("di.store: firestore client is nil")
	}
	if infra.Postgres == nil || infra.Postgres.Client == nil {
		return nil, errors.New("di.store: postgres is nil")
	}

	c := &Container{Infra: infra}

	// repositories
	c.UserCarts = fsout.NewCartRepositoryFS(infra.Firestore)
	c.GuestCarts = dbout.NewGuestCartRepositoryPG(infra.Postgres.Client)
	c.Products = fsout.NewProductRepositoryFS(infra.Firestore)
	c.Orders = fsout.NewOrderRepositoryFS(infra.Firestore)
	c.Wishlists = fsout.NewWishlistRepositoryFS(infra.Firestore)
	c.Audits = fsout.NewPaymentAuditRepositoryFS(infra.Firestore)

	if err := c.GuestCarts.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("di.store: guest cart migrate failed: %w", err)
	}

	if infra.GCS != nil && infra.MediaBucket != "" {
		c.Media = gcsout.NewProductMediaRepositoryGCS(infra.GCS, infra.MediaBucket)
	} else {
		log.Printf("[di.store] WARN: media repository not configured (gcs=%t bucket=%q)", infra.GCS != nil, infra.MediaBucket)
	}

	// application
	c.Cart = usecase.NewCartUsecase(c.UserCarts, c.GuestCarts, c.Products)
	c.CartMerge = usecase.NewCartMergeUsecase(c.UserCarts, c.GuestCarts)
	c.Checkout = usecase.NewCheckoutUsecase(usecase.CheckoutPolicy{
		FreeShippingThreshold: infra.Config.FreeShippingThreshold,
		ShippingFee:           infra.Config.ShippingFee,
		GiftWrapFee:           infra.Config.GiftWrapFee,
	})
	c.Inventory = usecase.NewInventoryUsecase(c.Products)
	c.Wishlist = usecase.NewWishlistUsecase(c.Wishlists, c.Products)
	c.OrderFlow = usecase.NewOrderFlowUsecase(
		c.Orders,
		c.Cart,
		c.Checkout,
		c.Inventory,
		c.Audits,
		mailout.NewOrderMailerWithSendGrid(),
	)
	c.Catalog = catalogquery.New(c.Products)

	log.Printf("[di.store] container initialized")
	return c, nil
}

// Close releases container-owned resources. Clients belong to Infra.
func (c *Container) Close() error {
	return nil
}

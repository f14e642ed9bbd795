// internal/adapters/in/http/store/router.go
package store

import (
	"log"
	"net/http"
)

// Deps is the storefront handler set.
type Deps struct {
	Catalog  http.Handler
	Cart     http.Handler
	Wishlist http.Handler
	Checkout http.Handler
	Order    http.Handler

	// back-office (wrapped in AdminAuthMiddleware by DI)
	Admin http.Handler

	// gateway callback (no user auth; HMAC verified inside)
	PaymentWebhook http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so Cloud Run won't crash).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[store.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers the storefront routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog
	handleSafe(mux, "/store/catalog", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/catalog/", deps.Catalog, "Catalog")

	// cart (user or guest session)
	handleSafe(mux, "/store/cart", deps.Cart, "Cart")
	handleSafe(mux, "/store/cart/", deps.Cart, "Cart")

	// wishlist (signed-in only)
	handleSafe(mux, "/store/wishlist", deps.Wishlist, "Wishlist")
	handleSafe(mux, "/store/wishlist/", deps.Wishlist, "Wishlist")

	// checkout quote
	handleSafe(mux, "/store/checkout/quote", deps.Checkout, "Checkout")

	// orders
	handleSafe(mux, "/store/orders", deps.Order, "Order")
	handleSafe(mux, "/store/orders/", deps.Order, "Order")

	// back-office
	handleSafe(mux, "/store/admin/", deps.Admin, "Admin")

	// payment gateway callback
	handleSafe(mux, "/store/webhooks/payment", deps.PaymentWebhook, "PaymentWebhook")
}

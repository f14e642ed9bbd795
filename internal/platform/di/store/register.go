// internal/platform/di/store/register.go
package store

import (
	"encoding/json"
	"log"
	"net/http"

	"essentia/internal/adapters/in/http/middleware"
	storehttp "essentia/internal/adapters/in/http/store"
	storeHandler "essentia/internal/adapters/in/http/store/handler"
	storeWebhook "essentia/internal/adapters/in/http/store/webhook"
)

// requireUserAuth wraps handler with UserAuthMiddleware (fail-closed).
// If middleware is not initialized, it returns 503 so the bug is obvious.
func requireUserAuth(mw *middleware.UserAuthMiddleware, h http.Handler, name string) http.Handler {
	if h == nil {
		h = http.NotFoundHandler()
	}
	if mw == nil || mw.FirebaseAuth == nil {
		log.Printf("[store.register] ERROR: UserAuthMiddleware is not initialized (endpoint=%s). returning 503", name)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "user_auth_not_initialized",
				"name":  name,
			})
		})
	}
	return mw.Handler(h)
}

// Register builds the storefront handlers from the container and registers
// them onto mux. Pure DI: no method/path branching here.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}

	var fbAuth *middleware.FirebaseAuthClient
	if cont.Infra != nil {
		fbAuth = cont.Infra.FirebaseAuth
	}
	userAuthMW := &middleware.UserAuthMiddleware{FirebaseAuth: fbAuth}
	optionalAuthMW := &middleware.OptionalUserAuth{FirebaseAuth: fbAuth}
	adminMW := &middleware.AdminAuthMiddleware{}
	webhookSecret := ""
	if cont.Infra != nil {
		adminMW.Token = cont.Infra.AdminAPIToken
		webhookSecret = cont.Infra.PaymentWebhookSecret
	}

	cartH := storeHandler.NewCartHandler(cont.Cart, cont.CartMerge)
	wishlistH := storeHandler.NewWishlistHandler(cont.Wishlist)
	checkoutH := storeHandler.NewCheckoutHandler(cont.Cart, cont.Checkout)
	orderH := storeHandler.NewOrderHandler(cont.OrderFlow)
	catalogH := storeHandler.NewCatalogHandler(cont.Catalog, cont.Products)
	adminH := storeHandler.NewAdminHandler(cont.Media, cont.Products)
	webhookH := storeWebhook.NewPaymentWebhookHandler(cont.OrderFlow, webhookSecret)

	storehttp.Register(mux, storehttp.Deps{
		Catalog: catalogH,

		// cart/checkout/orders serve guests too; a presented token must
		// still verify
		Cart:     optionalAuthMW.Handler(cartH),
		Checkout: optionalAuthMW.Handler(checkoutH),
		Order:    optionalAuthMW.Handler(orderH),

		Wishlist: requireUserAuth(userAuthMW, wishlistH, "Wishlist"),

		Admin: adminMW.Handler(adminH),

		PaymentWebhook: webhookH,
	})

	log.Printf("[store.register] routes registered")
}

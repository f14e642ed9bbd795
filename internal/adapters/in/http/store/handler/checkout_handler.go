// internal/adapters/in/http/store/handler/checkout_handler.go
package storeHandler

import (
	"log"
	"net/http"

	usecase "essentia/internal/application/usecase"
)

// CheckoutHandler quotes the totals for the current cart.
//
//   - POST /store/checkout/quote  {"giftWrap": bool}
//
// The quote is computed server-side from the persisted cart; the client
// never sends prices.
type CheckoutHandler struct {
	carts    *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
}

func NewCheckoutHandler(carts *usecase.CartUsecase, checkout *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{carts: carts, checkout: checkout}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if h.carts == nil || h.checkout == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}

	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	var in struct {
		GiftWrap bool `json:"giftWrap"`
	}
	if err := readJSON(r, &in); err != nil {
		in.GiftWrap = false
	}

	c, err := h.carts.Get(r.Context(), mode)
	if err != nil {
		log.Printf("[store_checkout_handler] cart read failed key=%s err=%v", mode.Key(), err)
		writeErr(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	totals := h.checkout.Quote(c, in.GiftWrap)
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":   cartToDTO(c),
		"totals": totalsToDTO(totals),
	})
}

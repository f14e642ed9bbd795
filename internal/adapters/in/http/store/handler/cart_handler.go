// internal/adapters/in/http/store/handler/cart_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"essentia/internal/adapters/in/http/middleware"
	usecase "essentia/internal/application/usecase"
	productdom "essentia/internal/domain/product"
)

// CartHandler serves the storefront cart endpoints.
//
//   - GET    /store/cart        current cart (user or guest session)
//   - DELETE /store/cart        clear
//   - POST   /store/cart/items  add line
//   - PUT    /store/cart/items  change quantity (delta)
//   - DELETE /store/cart/items  remove line
//   - POST   /store/cart/merge  fold the guest cart into the user cart
type CartHandler struct {
	uc    *usecase.CartUsecase
	merge *usecase.CartMergeUsecase
}

func NewCartHandler(uc *usecase.CartUsecase, merge *usecase.CartMergeUsecase) http.Handler {
	return &CartHandler{uc: uc, merge: merge}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case strings.HasSuffix(path, "/cart") && r.Method == http.MethodGet:
		h.handleGet(w, r)
	case strings.HasSuffix(path, "/cart") && r.Method == http.MethodDelete:
		h.handleClear(w, r)
	case strings.HasSuffix(path, "/cart/items") && r.Method == http.MethodPost:
		h.handleAddItem(w, r)
	case strings.HasSuffix(path, "/cart/items") && r.Method == http.MethodPut:
		h.handleUpdateQty(w, r)
	case strings.HasSuffix(path, "/cart/items") && r.Method == http.MethodDelete:
		h.handleRemoveItem(w, r)
	case strings.HasSuffix(path, "/cart/merge") && r.Method == http.MethodPost:
		h.handleMerge(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	c, err := h.uc.Get(r.Context(), mode)
	if err != nil {
		log.Printf("[store_cart_handler] get failed key=%s err=%v", mode.Key(), err)
		writeErr(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, cartToDTO(c))
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	if err := h.uc.Clear(r.Context(), mode); err != nil {
		log.Printf("[store_cart_handler] clear failed key=%s err=%v", mode.Key(), err)
		writeErr(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemInput struct {
	ProductID string `json:"productId"`
	SizeKey   string `json:"sizeKey"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	var in addItemInput
	if err := readJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	c, err := h.uc.AddLine(r.Context(), mode, in.ProductID, in.SizeKey, in.Quantity)
	if err != nil {
		h.writeCartError(w, mode, "add item", err)
		return
	}
	writeJSON(w, http.StatusOK, cartToDTO(c))
}

type updateQtyInput struct {
	CartItemID string `json:"cartItemId"`
	Delta      int    `json:"delta"`
}

func (h *CartHandler) handleUpdateQty(w http.ResponseWriter, r *http.Request) {
	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	var in updateQtyInput
	if err := readJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if in.Delta == 0 {
		writeErr(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	c, err := h.uc.UpdateQuantity(r.Context(), mode, in.CartItemID, in.Delta)
	if err != nil {
		h.writeCartError(w, mode, "update qty", err)
		return
	}
	writeJSON(w, http.StatusOK, cartToDTO(c))
}

type removeItemInput struct {
	CartItemID string `json:"cartItemId"`
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	var in removeItemInput
	if err := readJSON(r, &in); err != nil {
		// allow ?cartItemId= for DELETE without body
		in.CartItemID = strings.TrimSpace(r.URL.Query().Get("cartItemId"))
	}
	if strings.TrimSpace(in.CartItemID) == "" {
		writeErr(w, http.StatusBadRequest, "cartItemId is required")
		return
	}

	c, err := h.uc.RemoveLine(r.Context(), mode, in.CartItemID)
	if err != nil {
		h.writeCartError(w, mode, "remove item", err)
		return
	}
	writeJSON(w, http.StatusOK, cartToDTO(c))
}

type mergeInput struct {
	SessionID string `json:"sessionId"`
}

// handleMerge requires a verified user; the guest session to absorb comes
// from the body (X-Session-Id fallback).
func (h *CartHandler) handleMerge(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "sign-in is required")
		return
	}
	if h.merge == nil {
		writeErr(w, http.StatusInternalServerError, "merge is not configured")
		return
	}

	var in mergeInput
	if err := readJSON(r, &in); err != nil {
		in.SessionID = ""
	}
	sid := strings.TrimSpace(in.SessionID)
	if sid == "" {
		sid = strings.TrimSpace(r.Header.Get(headerSessionID))
	}
	if sid == "" {
		writeErr(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	c, err := h.merge.MergeOnLogin(r.Context(), sid, uid)
	if err != nil {
		if errors.Is(err, usecase.ErrMergeInvalidArgument) {
			writeErr(w, http.StatusBadRequest, "invalid merge request")
			return
		}
		log.Printf("[store_cart_handler] merge failed uid=%s sid=%s err=%v", uid, sid, err)
		writeErr(w, http.StatusInternalServerError, "failed to merge cart")
		return
	}
	writeJSON(w, http.StatusOK, cartToDTO(c))
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, mode usecase.SessionMode, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrCartInvalidArgument):
		writeErr(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, usecase.ErrCartSizeUnknown):
		writeErr(w, http.StatusUnprocessableEntity, "unknown product size")
	case errors.Is(err, productdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "product not found")
	default:
		log.Printf("[store_cart_handler] %s failed key=%s err=%v", op, mode.Key(), err)
		writeErr(w, http.StatusInternalServerError, "cart operation failed")
	}
}

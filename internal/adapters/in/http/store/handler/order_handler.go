// internal/adapters/in/http/store/handler/order_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"essentia/internal/adapters/in/http/middleware"
	usecase "essentia/internal/application/usecase"
	orderdom "essentia/internal/domain/order"
)

// OrderHandler serves order creation and history.
//
//   - POST /store/orders        snapshot the cart into a pending order
//   - GET  /store/orders        history for the signed-in user
//   - GET  /store/orders/{id}   single order (owner only)
type OrderHandler struct {
	uc *usecase.OrderFlowUsecase
}

func NewOrderHandler(uc *usecase.OrderFlowUsecase) http.Handler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/orders") && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case strings.HasSuffix(path, "/orders") && r.Method == http.MethodGet:
		h.handleList(w, r)
	case r.Method == http.MethodGet:
		h.handleGet(w, r, orderIDFromPath(path))
	default:
		methodNotAllowed(w)
	}
}

func orderIDFromPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(path[i+1:])
}

type createOrderRequest struct {
	Customer orderdom.CustomerInfo `json:"customer"`
	GiftWrap bool                  `json:"giftWrap"`
	// Names maps productId -> display name snapshotted into the order.
	Names map[string]string `json:"names"`
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	mode, ok := resolveSession(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "session is required (sign in or send X-Session-Id)")
		return
	}

	var in createOrderRequest
	if err := readJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	o, err := h.uc.Create(r.Context(), usecase.CreateOrderInput{
		Mode:     mode,
		Customer: in.Customer,
		GiftWrap: in.GiftWrap,
		Names:    in.Names,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrOrderFlowEmptyCart):
			writeErr(w, http.StatusUnprocessableEntity, "cart is empty")
		case errors.Is(err, usecase.ErrOrderFlowInvalidArgument),
			errors.Is(err, orderdom.ErrInvalidCustomer),
			errors.Is(err, orderdom.ErrInvalidItems):
			writeErr(w, http.StatusBadRequest, "invalid order request")
		default:
			log.Printf("[store_order_handler] create failed key=%s err=%v", mode.Key(), err)
			writeErr(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}
	writeJSON(w, http.StatusCreated, orderToDTO(o))
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "sign-in is required")
		return
	}

	orders, err := h.uc.ListByUser(r.Context(), uid)
	if err != nil {
		log.Printf("[store_order_handler] list failed uid=%s err=%v", uid, err)
		writeErr(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToDTO(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || id == "orders" {
		writeErr(w, http.StatusBadRequest, "order id is required")
		return
	}

	o, err := h.uc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, orderdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("[store_order_handler] get failed id=%s err=%v", id, err)
		writeErr(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	// Owner check: a user order needs the matching uid, a guest order the
	// matching session id.
	if o.UserID != "" {
		uid, ok := middleware.CurrentUserUID(r)
		if !ok || uid != o.UserID {
			writeErr(w, http.StatusForbidden, "not your order")
			return
		}
	} else if o.SessionID != "" {
		sid := strings.TrimSpace(r.Header.Get(headerSessionID))
		if sid == "" || sid != o.SessionID {
			writeErr(w, http.StatusForbidden, "not your order")
			return
		}
	}

	writeJSON(w, http.StatusOK, orderToDTO(o))
}

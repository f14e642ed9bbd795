// internal/adapters/in/http/store/handler/wishlist_handler.go
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

// WishlistHandler serves /store/wishlist (signed-in users only).
//
//   - GET    /store/wishlist              current wishlist
//   - POST   /store/wishlist              add product (no-op when present)
//   - DELETE /store/wishlist?productId=x  remove product
type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) http.Handler {
	return &WishlistHandler{uc: uc}
}

func (h *WishlistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "wishlist handler is not configured")
		return
	}
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "sign-in is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		wl, err := h.uc.Get(r.Context(), uid)
		if err != nil {
			log.Printf("[store_wishlist_handler] get failed uid=%s err=%v", uid, err)
			writeErr(w, http.StatusInternalServerError, "failed to load wishlist")
			return
		}
		writeJSON(w, http.StatusOK, wishlistToDTO(wl))

	case http.MethodPost:
		var in struct {
			ProductID string `json:"productId"`
		}
		if err := readJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
		wl, err := h.uc.Add(r.Context(), uid, in.ProductID)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrWishlistInvalidArgument):
				writeErr(w, http.StatusBadRequest, "productId is required")
			case errors.Is(err, productdom.ErrNotFound):
				writeErr(w, http.StatusNotFound, "product not found")
			default:
				log.Printf("[store_wishlist_handler] add failed uid=%s pid=%s err=%v", uid, in.ProductID, err)
				writeErr(w, http.StatusInternalServerError, "failed to update wishlist")
			}
			return
		}
		writeJSON(w, http.StatusOK, wishlistToDTO(wl))

	case http.MethodDelete:
		pid := strings.TrimSpace(r.URL.Query().Get("productId"))
		if pid == "" {
			var in struct {
				ProductID string `json:"productId"`
			}
			if err := readJSON(r, &in); err == nil {
				pid = strings.TrimSpace(in.ProductID)
			}
		}
		if pid == "" {
			writeErr(w, http.StatusBadRequest, "productId is required")
			return
		}
		wl, err := h.uc.Remove(r.Context(), uid, pid)
		if err != nil {
			if errors.Is(err, usecase.ErrWishlistInvalidArgument) {
				writeErr(w, http.StatusBadRequest, "productId is required")
				return
			}
			log.Printf("[store_wishlist_handler] remove failed uid=%s pid=%s err=%v", uid, pid, err)
			writeErr(w, http.StatusInternalServerError, "failed to update wishlist")
			return
		}
		writeJSON(w, http.StatusOK, wishlistToDTO(wl))

	default:
		methodNotAllowed(w)
	}
}

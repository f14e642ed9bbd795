// internal/adapters/in/http/store/handler/admin_handler.go
package storeHandler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	gcsout "essentia/internal/adapters/out/gcs"
	productdom "essentia/internal/domain/product"
)

// mediaStore is the slice of the GCS adapter the admin handler needs.
type mediaStore interface {
	Upload(ctx context.Context, productID, fileName, contentType string, body io.Reader) (gcsout.UploadResult, error)
	Delete(ctx context.Context, productID, fileName string) error
}

// AdminHandler serves the back-office endpoints (behind AdminAuthMiddleware).
//
//   - POST /store/admin/media                      multipart image upload
//   - PUT  /store/admin/products/{id}/stock        set a size's stock count
//   - POST /store/admin/products                   upsert a product document
type AdminHandler struct {
	media    mediaStore
	products productdom.Repository
}

func NewAdminHandler(media mediaStore, products productdom.Repository) http.Handler {
	return &AdminHandler{media: media, products: products}
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case strings.HasSuffix(path, "/admin/media") && r.Method == http.MethodPost:
		h.handleMediaUpload(w, r)
	case strings.HasSuffix(path, "/stock") && r.Method == http.MethodPut:
		h.handleSetStock(w, r, stockProductID(path))
	case strings.HasSuffix(path, "/admin/products") && r.Method == http.MethodPost:
		h.handleUpsertProduct(w, r)
	default:
		methodNotAllowed(w)
	}
}

// stockProductID extracts {id} from .../admin/products/{id}/stock.
func stockProductID(path string) string {
	trimmed := strings.TrimSuffix(path, "/stock")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(trimmed[i+1:])
}

const maxUploadBytes = 10 << 20 // 10MB

func (h *AdminHandler) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		writeErr(w, http.StatusInternalServerError, "media store is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	productID := strings.TrimSpace(r.FormValue("productId"))
	if productID == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	fileName := strings.TrimSpace(header.Filename)
	if fileName == "" {
		fileName = "upload.bin"
	}
	contentType := header.Header.Get("Content-Type")

	res, err := h.media.Upload(r.Context(), productID, fileName, contentType, file)
	if err != nil {
		log.Printf("[store_admin_handler] upload failed productId=%s file=%s err=%v", productID, fileName, err)
		writeErr(w, http.StatusInternalServerError, "failed to store media")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"objectPath":   res.ObjectPath,
		"url":          res.URL,
		"thumbnailUrl": res.ThumbnailURL,
	})
}

type setStockInput struct {
	SizeKey    string `json:"sizeKey"`
	Stock      int    `json:"stock"`
	OutOfStock *bool  `json:"isOutOfStock"` // optional override; default derives from stock
}

// handleSetStock is the only path that can clear a size's sold-out flag.
func (h *AdminHandler) handleSetStock(w http.ResponseWriter, r *http.Request, productID string) {
	if h.products == nil {
		writeErr(w, http.StatusInternalServerError, "product repository is not configured")
		return
	}
	if productID == "" {
		writeErr(w, http.StatusBadRequest, "product id is required")
		return
	}

	var in setStockInput
	if err := readJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(in.SizeKey) == "" {
		writeErr(w, http.StatusBadRequest, "sizeKey is required")
		return
	}
	if in.Stock < 0 {
		writeErr(w, http.StatusBadRequest, "stock must be >= 0")
		return
	}

	outOfStock := in.Stock <= 0
	if in.OutOfStock != nil {
		outOfStock = *in.OutOfStock
	}

	applied := false
	err := h.products.AdjustInTx(r.Context(), productID, func(p *productdom.Product, now time.Time) bool {
		applied = p.SetSizeStock(in.SizeKey, in.Stock, outOfStock, now)
		return applied
	})
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("[store_admin_handler] set stock failed productId=%s size=%s err=%v", productID, in.SizeKey, err)
		writeErr(w, http.StatusInternalServerError, "failed to update stock")
		return
	}
	if !applied {
		writeErr(w, http.StatusUnprocessableEntity, "unknown size")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	if h.products == nil {
		writeErr(w, http.StatusInternalServerError, "product repository is not configured")
		return
	}

	var p productdom.Product
	if err := readJSON(r, &p); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.products.Upsert(r.Context(), &p); err != nil {
		if errors.Is(err, productdom.ErrInvalidProduct) {
			writeErr(w, http.StatusBadRequest, "invalid product")
			return
		}
		log.Printf("[store_admin_handler] upsert product failed id=%s err=%v", p.ID, err)
		writeErr(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	writeJSON(w, http.StatusOK, productToDTO(&p))
}

// internal/adapters/in/http/store/handler/catalog_handler.go
package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	catalogquery "essentia/internal/application/query/catalog"
	productdom "essentia/internal/domain/product"
)

// CatalogHandler serves the public product listing.
//
//   - GET /store/catalog?category=&badge=&q=&minPrice=&maxPrice=&inStock=1&sort=price_asc
//   - GET /store/catalog/{id}
type CatalogHandler struct {
	query    *catalogquery.Query
	products productdom.Repository
}

func NewCatalogHandler(query *catalogquery.Query, products productdom.Repository) http.Handler {
	return &CatalogHandler{query: query, products: products}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if h.query == nil || h.products == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	if id := catalogIDFromPath(path); id != "" {
		h.handleDetail(w, r, id)
		return
	}
	h.handleList(w, r)
}

func catalogIDFromPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	tail := strings.TrimSpace(path[i+1:])
	if tail == "catalog" {
		return ""
	}
	return tail
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := catalogquery.Filter{
		Category:    strings.TrimSpace(q.Get("category")),
		Badge:       strings.TrimSpace(q.Get("badge")),
		Search:      strings.TrimSpace(q.Get("q")),
		InStockOnly: parseBool(q.Get("inStock")),
	}
	f.MinPrice = parsePrice(q.Get("minPrice"))
	f.MaxPrice = parsePrice(q.Get("maxPrice"))

	sortKey := catalogquery.SortKey(strings.TrimSpace(q.Get("sort")))

	products, err := h.query.Browse(r.Context(), f, sortKey)
	if err != nil {
		log.Printf("[store_catalog_handler] browse failed err=%v", err)
		writeErr(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, productToDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out, "count": len(out)})
}

func (h *CatalogHandler) handleDetail(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("[store_catalog_handler] detail failed id=%s err=%v", id, err)
		writeErr(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, productToDTO(p))
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parsePrice returns nil on blank or junk so the filter is simply skipped.
func parsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

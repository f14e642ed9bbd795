// internal/adapters/in/http/store/handler/helpers.go
package storeHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"essentia/internal/adapters/in/http/middleware"
	usecase "essentia/internal/application/usecase"
	cartdom "essentia/internal/domain/cart"
	orderdom "essentia/internal/domain/order"
	productdom "essentia/internal/domain/product"
	wishdom "essentia/internal/domain/wishlist"
)

const headerSessionID = "X-Session-Id"

// ============================================================
// Session resolution
// ============================================================

// resolveSession picks the cart identity for the request: the verified
// Firebase UID when one is in context, otherwise the guest session id from
// the X-Session-Id header (query fallback "sessionId" for dev tooling).
func resolveSession(r *http.Request) (usecase.SessionMode, bool) {
	if uid, ok := middleware.CurrentUserUID(r); ok {
		return usecase.UserSession(uid), true
	}
	sid := strings.TrimSpace(r.Header.Get(headerSessionID))
	if sid == "" {
		sid = strings.TrimSpace(r.URL.Query().Get("sessionId"))
	}
	if sid == "" {
		return usecase.SessionMode{}, false
	}
	return usecase.GuestSession(sid), true
}

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func toRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ============================================================
// DTOs (prices rendered as decimal strings)
// ============================================================

type cartLineDTO struct {
	CartItemID string `json:"cartItemId"`
	ProductID  string `json:"productId"`
	SizeKey    string `json:"sizeKey,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	LineTotal  string `json:"lineTotal"`
}

type cartDTO struct {
	ID        string        `json:"id"`
	Lines     []cartLineDTO `json:"lines"`
	Count     int           `json:"count"`
	Total     string        `json:"total"`
	UpdatedAt string        `json:"updatedAt,omitempty"`
}

func cartToDTO(c *cartdom.Cart) cartDTO {
	dto := cartDTO{ID: "", Lines: []cartLineDTO{}, Total: "0"}
	if c == nil {
		return dto
	}
	dto.ID = c.ID
	dto.Count = c.Count()
	dto.Total = c.Total().String()
	dto.UpdatedAt = toRFC3339(c.UpdatedAt)
	for _, l := range c.Lines {
		lineTotal := l.UnitPrice.Mul(decimalFromInt(l.Quantity))
		dto.Lines = append(dto.Lines, cartLineDTO{
			CartItemID: l.CartItemID,
			ProductID:  l.ProductID,
			SizeKey:    l.SizeKey,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice.String(),
			LineTotal:  lineTotal.String(),
		})
	}
	return dto
}

type totalsDTO struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Gift     string `json:"gift"`
	Total    string `json:"total"`
}

func totalsToDTO(t orderdom.Totals) totalsDTO {
	return totalsDTO{
		Subtotal: t.Subtotal.String(),
		Shipping: t.Shipping.String(),
		Gift:     t.Gift.String(),
		Total:    t.Total.String(),
	}
}

type orderItemDTO struct {
	ProductID string `json:"productId"`
	SizeKey   string `json:"sizeKey,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type orderDTO struct {
	ID        string                `json:"id"`
	Status    string                `json:"status"`
	PaymentID string                `json:"paymentId"`
	Customer  orderdom.CustomerInfo `json:"customer"`
	Items     []orderItemDTO        `json:"items"`
	Totals    totalsDTO             `json:"totals"`
	CreatedAt string                `json:"createdAt"`
	UpdatedAt string                `json:"updatedAt"`
}

func orderToDTO(o orderdom.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ProductID: it.ProductID,
			SizeKey:   it.SizeKey,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
		})
	}
	return orderDTO{
		ID:        o.ID,
		Status:    string(o.Status),
		PaymentID: o.PaymentID,
		Customer:  o.Customer,
		Items:     items,
		Totals:    totalsToDTO(o.Totals),
		CreatedAt: toRFC3339(o.CreatedAt),
		UpdatedAt: toRFC3339(o.UpdatedAt),
	}
}

type sizeDTO struct {
	Size       string   `json:"size"`
	Price      string   `json:"price"`
	OldPrice   string   `json:"oldPrice,omitempty"`
	Stock      int      `json:"stock"`
	OutOfStock bool     `json:"isOutOfStock"`
	Images     []string `json:"images"`
}

type productDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand,omitempty"`
	Category   string    `json:"category,omitempty"`
	Badge      string    `json:"badge,omitempty"`
	Price      string    `json:"price"`
	Sizes      []sizeDTO `json:"sizes"`
	OutOfStock bool      `json:"isOutOfStock"`
	CreatedAt  string    `json:"createdAt,omitempty"`
}

func productToDTO(p *productdom.Product) productDTO {
	dto := productDTO{Sizes: []sizeDTO{}}
	if p == nil {
		return dto
	}
	dto.ID = p.ID
	dto.Name = p.Name
	dto.Brand = p.Brand
	dto.Category = p.Category
	dto.Badge = p.Badge
	dto.Price = p.Price.String()
	dto.OutOfStock = p.OutOfStock
	dto.CreatedAt = toRFC3339(p.CreatedAt)
	for _, s := range p.Sizes {
		sd := sizeDTO{
			Size:       s.Label,
			Price:      s.Price.String(),
			Stock:      s.Stock,
			OutOfStock: s.OutOfStock,
			Images:     s.Images,
		}
		if s.OldPrice != nil {
			sd.OldPrice = s.OldPrice.String()
		}
		if sd.Images == nil {
			sd.Images = []string{}
		}
		dto.Sizes = append(dto.Sizes, sd)
	}
	return dto
}

type wishlistItemDTO struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
	Badge     string `json:"badge,omitempty"`
	Category  string `json:"category,omitempty"`
	AddedAt   string `json:"addedAt"`
}

func wishlistToDTO(wl *wishdom.Wishlist) map[string]any {
	items := []wishlistItemDTO{}
	if wl != nil {
		for _, it := range wl.Items {
			items = append(items, wishlistItemDTO{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price.String(),
				Image:     it.Image,
				Badge:     it.Badge,
				Category:  it.Category,
				AddedAt:   toRFC3339(it.AddedAt),
			})
		}
	}
	return map[string]any{"items": items, "count": len(items)}
}

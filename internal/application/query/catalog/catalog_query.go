// internal/application/query/catalog/catalog_query.go
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	productdom "essentia/internal/domain/product"
)

// SortKey orders the filtered result.
type SortKey string

const (
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortName      SortKey = "name"
	SortNewest    SortKey = "newest"
)

// Filter is the in-memory predicate set applied to the fetched product list.
// Zero values mean "no constraint".
type Filter struct {
	Category    string
	Badge       string
	Search      string // case-insensitive substring on name/brand
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// Query serves the storefront's browse view: fetch once, filter and sort in
// memory. Stateless.
type Query struct {
	repo productdom.Repository
}

func New(repo productdom.Repository) *Query {
	return &Query{repo: repo}
}

func (q *Query) Browse(ctx context.Context, f Filter, s SortKey) ([]*productdom.Product, error) {
	all, err := q.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := Apply(all, f)
	Sort(out, s)
	return out, nil
}

// Apply filters the product list without mutating it.
func Apply(products []*productdom.Product, f Filter) []*productdom.Product {
	category := strings.TrimSpace(strings.ToLower(f.Category))
	badge := strings.TrimSpace(strings.ToLower(f.Badge))
	search := strings.TrimSpace(strings.ToLower(f.Search))

	out := make([]*productdom.Product, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if badge != "" && strings.ToLower(p.Badge) != badge {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		if f.InStockOnly && p.OutOfStock {
			continue
		}
		price := displayPrice(p)
		if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders in place.
func Sort(products []*productdom.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return displayPrice(products[i]).LessThan(displayPrice(products[j]))
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return displayPrice(products[i]).GreaterThan(displayPrice(products[j]))
		})
	case SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

// displayPrice is the price used for browsing: cheapest size, or the legacy
// product price for sizeless products.
func displayPrice(p *productdom.Product) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if len(p.Sizes) == 0 {
		return p.Price
	}
	min := p.Sizes[0].Price
	for _, s := range p.Sizes[1:] {
		if s.Price.LessThan(min) {
			min = s.Price
		}
	}
	return min
}

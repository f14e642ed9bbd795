// internal/application/usecase/inventory_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	productdom "essentia/internal/domain/product"
)

// SaleLine is one purchased (product, size, qty) to decrement.
type SaleLine struct {
	ProductID string
	SizeKey   string
	Quantity  int
}

// InventoryUsecase decrements per-size stock after a confirmed sale.
//
// Each product is adjusted in its own transaction (repo.AdjustInTx), so two
// simultaneous purchases of the same size serialize on the product document
// and never both read a stale count. Across products there is no atomicity:
// a multi-item order's decrements commit independently.
type InventoryUsecase struct {
	repo productdom.Repository
}

func NewInventoryUsecase(repo productdom.Repository) *InventoryUsecase {
	return &InventoryUsecase{repo: repo}
}

// AdjustForSale processes every purchased line, one transaction per product.
// A failed adjustment for one line is logged and does not halt the rest;
// such failures are left for manual reconciliation by design.
func (uc *InventoryUsecase) AdjustForSale(ctx context.Context, orderID string, lines []SaleLine) {
	if uc == nil || uc.repo == nil {
		return
	}
	oid := strings.TrimSpace(orderID)

	for _, ln := range aggregateSaleLines(lines) {
		pid := ln.ProductID
		key := ln.SizeKey
		qty := ln.Quantity

		err := uc.repo.AdjustInTx(ctx, pid, func(p *productdom.Product, now time.Time) bool {
			if !p.ApplySale(key, qty, now) {
				// Size disappeared since checkout; skip silently.
				log.Printf("[inventory_uc] size not found order=%s product=%s size=%q (skipped)", oid, pid, key)
				return false
			}
			return true
		})
		if err != nil {
			if errors.Is(err, productdom.ErrNotFound) {
				log.Printf("[inventory_uc] product missing order=%s product=%s (skipped)", oid, pid)
				continue
			}
			log.Printf("[inventory_uc] WARN: stock adjust failed order=%s product=%s size=%q qty=%d err=%v (manual reconciliation required)", oid, pid, key, qty, err)
		}
	}
}

// aggregateSaleLines merges duplicate (productId, sizeKey) lines and drops
// invalid ones (no product id, no size key, non-positive qty), in a stable
// order for logs.
func aggregateSaleLines(lines []SaleLine) []SaleLine {
	if len(lines) == 0 {
		return nil
	}

	type key struct {
		pid string
		sz  string
	}
	m := map[key]int{}
	for _, ln := range lines {
		pid := strings.TrimSpace(ln.ProductID)
		sz := strings.TrimSpace(ln.SizeKey)
		if pid == "" || sz == "" || ln.Quantity <= 0 {
			continue
		}
		m[key{pid: pid, sz: sz}] += ln.Quantity
	}

	out := make([]SaleLine, 0, len(m))
	for k, q := range m {
		out = append(out, SaleLine{ProductID: k.pid, SizeKey: k.sz, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID == out[j].ProductID {
			return out[i].SizeKey < out[j].SizeKey
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// internal/adapters/out/db/guest_cart_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	cartdom "essentia/internal/domain/cart"
)

// GuestCartRepositoryPG implements cart.Repository for anonymous sessions.
// It is the server-side stand-in for the storefront's device-local cart
// store: fast, keyed by session id, deleted wholesale once merged into the
// user's Firestore cart on login.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS guest_carts (
//	    session_id TEXT PRIMARY KEY,
//	    lines      JSONB NOT NULL DEFAULT '[]',
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type GuestCartRepositoryPG struct {
	DB *sql.DB
}

func NewGuestCartRepositoryPG(db *sql.DB) *GuestCartRepositoryPG {
	return &GuestCartRepositoryPG{DB: db}
}

// Migrate creates the table. Idempotent; called once at boot.
func (r *GuestCartRepositoryPG) Migrate(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return errors.New("guest_cart_repository_pg: db is nil")
	}
	const q = `
CREATE TABLE IF NOT EXISTS guest_carts (
    session_id TEXT PRIMARY KEY,
    lines      JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Get returns (nil, nil) when no row exists.
func (r *GuestCartRepositoryPG) Get(ctx context.Context, sessionID string) (*cartdom.Cart, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("guest_cart_repository_pg: db is nil")
	}
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, errors.New("guest_cart_repository_pg: sessionID is empty")
	}

	const q = `SELECT lines, created_at, updated_at FROM guest_carts WHERE session_id = $1`
	var (
		rawLines  []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.DB.QueryRowContext(ctx, q, sid).Scan(&rawLines, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("guest_cart_repository_pg: select: %w", err)
	}

	return &cartdom.Cart{
		ID:        sid,
		Lines:     decodeLines(rawLines),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Upsert overwrites the full row (same last-writer-wins contract as the
// Firestore cart).
func (r *GuestCartRepositoryPG) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.DB == nil {
		return errors.New("guest_cart_repository_pg: db is nil")
	}
	if c == nil {
		return errors.New("guest_cart_repository_pg: cart is nil")
	}
	sid := strings.TrimSpace(c.ID)
	if sid == "" {
		return errors.New("guest_cart_repository_pg: Upsert requires cart.ID (= session id)")
	}

	payload, err := json.Marshal(encodeLines(c.Lines))
	if err != nil {
		return fmt.Errorf("guest_cart_repository_pg: marshal lines: %w", err)
	}

	const q = `
INSERT INTO guest_carts (session_id, lines, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id)
DO UPDATE SET lines = EXCLUDED.lines, updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, q, sid, payload, c.CreatedAt, c.UpdatedAt)
	return err
}

// Delete removes the row. Missing row is not an error.
func (r *GuestCartRepositoryPG) Delete(ctx context.Context, sessionID string) error {
	if r == nil || r.DB == nil {
		return errors.New("guest_cart_repository_pg: db is nil")
	}
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return errors.New("guest_cart_repository_pg: sessionID is empty")
	}
	_, err := r.DB.ExecContext(ctx, `DELETE FROM guest_carts WHERE session_id = $1`, sid)
	return err
}

// -----------------------------------------
// JSONB codec
// -----------------------------------------

type lineRow struct {
	CartItemID string `json:"cartItemId"`
	ProductID  string `json:"productId"`
	SizeKey    string `json:"sizeKey"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
}

func encodeLines(lines []cartdom.Line) []lineRow {
	out := make([]lineRow, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 {
			continue
		}
		out = append(out, lineRow{
			CartItemID: l.CartItemID,
			ProductID:  l.ProductID,
			SizeKey:    l.SizeKey,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice.String(),
		})
	}
	return out
}

// decodeLines is deliberately lenient: a row with a malformed price keeps
// the line with price zero, and junk entries are dropped, so one bad row
// never breaks the guest's cart.
func decodeLines(raw []byte) []cartdom.Line {
	var rows []lineRow
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return []cartdom.Line{}
		}
	}

	out := make([]cartdom.Line, 0, len(rows))
	for _, row := range rows {
		pid := strings.TrimSpace(row.ProductID)
		if pid == "" || row.Quantity <= 0 {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(row.UnitPrice))
		if err != nil {
			price = decimal.Zero
		}
		out = append(out, cartdom.Line{
			CartItemID: strings.TrimSpace(row.CartItemID),
			ProductID:  pid,
			SizeKey:    strings.TrimSpace(row.SizeKey),
			Quantity:   row.Quantity,
			UnitPrice:  price,
		})
	}
	return out
}

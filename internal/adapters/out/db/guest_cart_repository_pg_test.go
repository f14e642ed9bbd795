// internal/adapters/out/db/guest_cart_repository_pg_test.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	cartdom "essentia/internal/domain/cart"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	if os.Getenv("RUN_DB_TESTS") == "" {
		t.Skip("set RUN_DB_TESTS=1 to run container-backed tests")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := conn.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		if err := conn.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return conn, cleanup
}

func setupRepo(t *testing.T) (*GuestCartRepositoryPG, func()) {
	conn, cleanup := setupTestDB(t)
	repo := NewGuestCartRepositoryPG(conn)
	if err := repo.Migrate(context.Background()); err != nil {
		cleanup()
		t.Fatalf("Migrate failed: %v", err)
	}
	return repo, cleanup
}

func guestCart(t *testing.T, sessionID string) *cartdom.Cart {
	t.Helper()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c, err := cartdom.New(sessionID, []cartdom.Line{
		{CartItemID: "ci-1", ProductID: "p1", SizeKey: "50ml", Quantity: 2, UnitPrice: decimal.RequireFromString("149.99")},
	}, now)
	if err != nil {
		t.Fatalf("cart fixture: %v", err)
	}
	return c
}

func TestGuestCartRepo_GetMissingReturnsNilNil(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	c, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil cart for missing session, got %+v", c)
	}
}

func TestGuestCartRepo_UpsertRoundTrip(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Upsert(ctx, guestCart(t, "sess1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.Get(ctx, "sess1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %+v", got)
	}
	ln := got.Lines[0]
	if ln.CartItemID != "ci-1" || ln.ProductID != "p1" || ln.SizeKey != "50ml" || ln.Quantity != 2 {
		t.Errorf("unexpected line: %+v", ln)
	}
	if !ln.UnitPrice.Equal(decimal.RequireFromString("149.99")) {
		t.Errorf("price must round-trip exactly, got %s", ln.UnitPrice)
	}
}

func TestGuestCartRepo_UpsertIsFullOverwrite(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Upsert(ctx, guestCart(t, "sess1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	now := time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC)
	replacement, err := cartdom.New("sess1", []cartdom.Line{
		{CartItemID: "ci-9", ProductID: "p2", SizeKey: "100ml", Quantity: 1, UnitPrice: decimal.NewFromInt(80)},
	}, now)
	if err != nil {
		t.Fatalf("cart fixture: %v", err)
	}
	if err := repo.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.Get(ctx, "sess1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines[0].CartItemID != "ci-9" {
		t.Errorf("second upsert must overwrite, got %+v", got.Lines)
	}
}

func TestGuestCartRepo_DeleteIsIdempotent(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Upsert(ctx, guestCart(t, "sess1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Delete(ctx, "sess1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c, _ := repo.Get(ctx, "sess1"); c != nil {
		t.Errorf("expected deleted cart, got %+v", c)
	}
	if err := repo.Delete(ctx, "sess1"); err != nil {
		t.Errorf("deleting a missing cart must not error, got %v", err)
	}
}

func TestGuestCartRepo_LenientRowDecode(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	// a hand-edited row with one corrupt line and a junk price
	_, err := repo.DB.ExecContext(ctx,
		`INSERT INTO guest_carts (session_id, lines, created_at, updated_at)
		 VALUES ($1, $2, now(), now())`,
		"sess1",
		`[{"cartItemId":"ci-1","productId":"p1","sizeKey":"50ml","quantity":1,"unitPrice":"oops"},
		  {"cartItemId":"ci-2","productId":"","quantity":1,"unitPrice":"10"}]`,
	)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	got, err := repo.Get(ctx, "sess1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("corrupt line must be dropped, got %+v", got.Lines)
	}
	if !got.Lines[0].UnitPrice.IsZero() {
		t.Errorf("junk price must decode to zero, got %s", got.Lines[0].UnitPrice)
	}
}

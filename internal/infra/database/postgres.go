// internal/infra/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	Client *sql.DB
}

// NewConnection opens the guest-cart PostgreSQL store from a DSN
// ("host=... user=... dbname=... sslmode=...").
func NewConnection(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("database: dsn is empty")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	// Connection pool tuning
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	log.Println("[DB] Connected to PostgreSQL successfully")
	return &DB{Client: db}, nil
}

// Graceful shutdown
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

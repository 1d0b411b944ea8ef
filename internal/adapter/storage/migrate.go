package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Migrate creates the inventory table if it does not exist. The reserved
// count deliberately has no reserved <= quantity constraint: a manual
// adjustment may pull quantity below reserved and the row must still be
// storable until the next release.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inventory (
			id CHAR(36) NOT NULL PRIMARY KEY,
			sku VARCHAR(50) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL DEFAULT 0,
			reserved INT NOT NULL DEFAULT 0,
			warehouse VARCHAR(50) NOT NULL DEFAULT 'DEFAULT',
			low_stock_threshold INT NOT NULL DEFAULT 10,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			CONSTRAINT positive_quantity CHECK (quantity >= 0),
			CONSTRAINT positive_reserved CHECK (reserved >= 0)
		)`)
	if err != nil {
		return fmt.Errorf("create inventory table: %w", err)
	}
	return nil
}

// Seed inserts sample products when the table is empty. Safe to run on
// every boot.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&count); err != nil {
		return fmt.Errorf("count inventory: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		sku       string
		name      string
		quantity  int
		warehouse string
		threshold int
	}{
		{"SKU-LAPTOP-001", "Dell XPS 15 Laptop", 50, "JKT-1", 10},
		{"SKU-LAPTOP-002", "MacBook Pro 14", 30, "JKT-1", 5},
		{"SKU-PHONE-001", "iPhone 15 Pro", 100, "JKT-1", 20},
		{"SKU-PHONE-002", "Samsung Galaxy S24", 75, "JKT-1", 15},
		{"SKU-TABLET-001", "iPad Pro 12.9", 40, "JKT-2", 8},
		{"SKU-MONITOR-001", "LG 27 4K Monitor", 25, "SBY-1", 5},
		{"SKU-KEYBOARD-001", "Logitech MX Keys", 200, "SBY-1", 30},
		{"SKU-MOUSE-001", "Logitech MX Master 3", 150, "SBY-1", 25},
		{"SKU-HEADPHONE-001", "Sony WH-1000XM5", 60, "JKT-2", 10},
		{"SKU-CABLE-001", "USB-C Cable 2m", 500, "JKT-1", 100},
	}

	for _, s := range samples {
		_, err := db.ExecContext(ctx, `
			INSERT INTO inventory (id, sku, name, quantity, warehouse, low_stock_threshold)
			VALUES (?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE sku = sku`,
			uuid.NewString(), s.sku, s.name, s.quantity, s.warehouse, s.threshold)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.sku, err)
		}
	}
	return nil
}

package port

import (
	"context"

	"github.com/stockops/inventory-service/internal/core/domain"
)

// LedgerTx is an open transaction holding the row lock acquired by
// LockAndRead. Exactly one of Commit or Rollback must be called.
type LedgerTx interface {
	// UpdateReserved adds delta to the reserved count (delta may be
	// negative) and returns the updated row. The caller must have already
	// validated that reserved stays within [0, quantity].
	UpdateReserved(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error)

	// UpdateQuantity adds delta to quantity, clamped at zero, and returns
	// the updated row.
	UpdateQuantity(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error)

	Commit() error
	Rollback() error
}

// LedgerRepository is the authoritative store for inventory rows.
type LedgerRepository interface {
	// LockAndRead begins a transaction and reads the row for sku under an
	// exclusive lock. It blocks while another transaction holds the lock on
	// the same sku. Returns domain.ErrNotFound (with no open transaction)
	// when the sku is absent.
	LockAndRead(ctx context.Context, sku string) (LedgerTx, *domain.InventoryItem, error)

	// ReleaseReserved decrements reserved by quantity as a single atomic
	// conditional statement. Returns domain.ErrNothingToRelease when the
	// sku is unknown or reserved < quantity.
	ReleaseReserved(ctx context.Context, sku string, quantity int) error

	// Adjust adds delta to quantity, clamped at zero, as a single atomic
	// statement, and returns the updated row. Returns domain.ErrNotFound
	// when the sku is absent.
	Adjust(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error)

	// GetBySKU is a plain non-locking read.
	GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error)

	// List returns a page of rows ordered by sku ascending plus the total
	// row count independent of the page window.
	List(ctx context.Context, offset, limit int) ([]domain.InventoryItem, int64, error)

	// LowStock returns all rows whose available count is below their
	// threshold, most critical first.
	LowStock(ctx context.Context) ([]domain.LowStockAlert, error)

	Ping(ctx context.Context) error
}

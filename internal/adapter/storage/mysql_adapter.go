package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stockops/inventory-service/internal/core/domain"
	"github.com/stockops/inventory-service/internal/port"
)

const itemColumns = `id, sku, name, quantity, reserved, warehouse, low_stock_threshold, created_at, updated_at`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ID, &item.SKU, &item.Name, &item.Quantity, &item.Reserved,
		&item.Warehouse, &item.LowStockThreshold, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LockAndRead opens a transaction and reads the row under FOR UPDATE. The
// lock is held until Commit or Rollback on the returned transaction; a
// concurrent LockAndRead on the same sku blocks until then.
func (m *MySQLAdapter) LockAndRead(ctx context.Context, sku string) (port.LedgerTx, *domain.InventoryItem, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}

	item, err := scanItem(tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE sku = ? FOR UPDATE`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("lock inventory row: %w", err)
	}

	return &mysqlTx{tx: tx}, item, nil
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) UpdateReserved(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error) {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE inventory
		SET reserved = reserved + ?, updated_at = NOW(6)
		WHERE sku = ?`, delta, sku)
	if err != nil {
		return nil, fmt.Errorf("update reserved: %w", err)
	}
	item, err := scanItem(t.tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE sku = ?`, sku))
	if err != nil {
		return nil, fmt.Errorf("reread inventory row: %w", err)
	}
	return item, nil
}

func (t *mysqlTx) UpdateQuantity(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error) {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = GREATEST(quantity + ?, 0), updated_at = NOW(6)
		WHERE sku = ?`, delta, sku)
	if err != nil {
		return nil, fmt.Errorf("update quantity: %w", err)
	}
	item, err := scanItem(t.tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE sku = ?`, sku))
	if err != nil {
		return nil, fmt.Errorf("reread inventory row: %w", err)
	}
	return item, nil
}

func (t *mysqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *mysqlTx) Rollback() error {
	return t.tx.Rollback()
}

// ReleaseReserved is a single conditional statement: the WHERE clause
// guarantees reserved never goes negative, trading a locked read-modify-write
// for one atomic round trip.
func (m *MySQLAdapter) ReleaseReserved(ctx context.Context, sku string, quantity int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET reserved = reserved - ?, updated_at = NOW(6)
		WHERE sku = ? AND reserved >= ?`, quantity, sku, quantity)
	if err != nil {
		return fmt.Errorf("release reserved: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNothingToRelease
	}
	return nil
}

func (m *MySQLAdapter) Adjust(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error) {
	_, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = GREATEST(quantity + ?, 0), updated_at = NOW(6)
		WHERE sku = ?`, delta, sku)
	if err != nil {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}

	// RowsAffected is 0 both for a missing sku and for a clamp that leaves
	// the value unchanged, so reread the row to tell them apart.
	item, err := m.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (m *MySQLAdapter) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	item, err := scanItem(m.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory WHERE sku = ?`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return item, nil
}

func (m *MySQLAdapter) List(ctx context.Context, offset, limit int) ([]domain.InventoryItem, int64, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory ORDER BY sku ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}

	var total int64
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}

	return items, total, nil
}

func (m *MySQLAdapter) LowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT sku, name, quantity - reserved AS available, low_stock_threshold, warehouse
		FROM inventory
		WHERE quantity - reserved < low_stock_threshold
		ORDER BY quantity - reserved ASC`)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var alerts []domain.LowStockAlert
	for rows.Next() {
		var a domain.LowStockAlert
		if err := rows.Scan(&a.SKU, &a.Name, &a.Available, &a.Threshold, &a.Warehouse); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	return alerts, nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stockops/inventory-service/internal/core/domain"
	"github.com/stockops/inventory-service/internal/port"
)

// MemoryAdapter is an in-memory LedgerRepository for tests and broker-less
// development. Transactions hold the store mutex from LockAndRead until
// Commit or Rollback, which serializes writers across all skus; that is a
// stricter ordering than the row-level locks of the MySQL adapter but
// satisfies the same contract.
type MemoryAdapter struct {
	mu    sync.Mutex
	items map[string]*domain.InventoryItem
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{items: make(map[string]*domain.InventoryItem)}
}

// Put inserts or replaces an item, filling in id and timestamps when absent.
func (m *MemoryAdapter) Put(item domain.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	m.items[item.SKU] = &item
}

func (m *MemoryAdapter) LockAndRead(ctx context.Context, sku string) (port.LedgerTx, *domain.InventoryItem, error) {
	m.mu.Lock()
	item, ok := m.items[sku]
	if !ok {
		m.mu.Unlock()
		return nil, nil, domain.ErrNotFound
	}
	snapshot := *item
	return &memoryTx{adapter: m}, &snapshot, nil
}

type memoryTx struct {
	adapter *MemoryAdapter
	writes  []func()
	done    bool
}

func (t *memoryTx) UpdateReserved(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error) {
	item, ok := t.adapter.items[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	pending := *item
	pending.Reserved += delta
	pending.UpdatedAt = time.Now().UTC()
	t.writes = append(t.writes, func() { *item = pending })
	return &pending, nil
}

func (t *memoryTx) UpdateQuantity(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error) {
	item, ok := t.adapter.items[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	pending := *item
	pending.Quantity = max(pending.Quantity+delta, 0)
	pending.UpdatedAt = time.Now().UTC()
	t.writes = append(t.writes, func() { *item = pending })
	return &pending, nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	for _, apply := range t.writes {
		apply()
	}
	t.adapter.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.adapter.mu.Unlock()
	return nil
}

func (m *MemoryAdapter) ReleaseReserved(ctx context.Context, sku string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[sku]
	if !ok || item.Reserved < quantity {
		return domain.ErrNothingToRelease
	}
	item.Reserved -= quantity
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryAdapter) Adjust(ctx context.Context, sku string, delta int) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item.Quantity = max(item.Quantity+delta, 0)
	item.UpdatedAt = time.Now().UTC()
	snapshot := *item
	return &snapshot, nil
}

func (m *MemoryAdapter) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	snapshot := *item
	return &snapshot, nil
}

func (m *MemoryAdapter) List(ctx context.Context, offset, limit int) ([]domain.InventoryItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]domain.InventoryItem, 0, len(m.items))
	for _, item := range m.items {
		all = append(all, *item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })

	total := int64(len(all))
	if offset >= len(all) {
		return []domain.InventoryItem{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MemoryAdapter) LowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var alerts []domain.LowStockAlert
	for _, item := range m.items {
		if item.IsLowStock() {
			alerts = append(alerts, domain.LowStockAlert{
				SKU:       item.SKU,
				Name:      item.Name,
				Available: item.Available(),
				Threshold: item.LowStockThreshold,
				Warehouse: item.Warehouse,
			})
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Available < alerts[j].Available })
	return alerts, nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}

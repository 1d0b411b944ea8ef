package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/stockops/inventory-service/internal/core/domain"
	"github.com/stockops/inventory-service/internal/port"
)

const (
	defaultCacheTTL       = 5 * time.Minute
	defaultLockTimeout    = 5 * time.Second
	defaultReservationTTL = 24 * time.Hour
)

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	// CacheTTL bounds how stale a plain read can be.
	CacheTTL time.Duration
	// LockTimeout is the wait budget for acquiring a row lock in Reserve.
	// Expiry surfaces as a storage failure the caller may retry.
	LockTimeout time.Duration
	// ReservationTTL sets how far ahead a reservation's expiry is stamped.
	ReservationTTL time.Duration
}

// InventoryService arbitrates claims against the ledger. It is the single
// authority on which state transitions are legal; the ledger serializes
// conflicting writers and the cache only accelerates reads.
type InventoryService struct {
	ledger port.LedgerRepository
	cache  port.CacheRepository
	sink   port.MetricsSink
	events port.EventPublisher
	cfg    Config
}

// NewInventoryService wires the engine. cache, sink and events may be nil;
// the engine stays fully correct with all of them disabled.
func NewInventoryService(ledger port.LedgerRepository, cache port.CacheRepository, sink port.MetricsSink, events port.EventPublisher, cfg Config) *InventoryService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = defaultReservationTTL
	}
	return &InventoryService{
		ledger: ledger,
		cache:  cache,
		sink:   sink,
		events: events,
		cfg:    cfg,
	}
}

// Reserve claims quantity units of sku for orderID. The locked read, the
// validation and the write commit as one transaction, so two concurrent
// reservations can never both fit into the same stock.
func (s *InventoryService) Reserve(ctx context.Context, sku string, quantity int, orderID string) (*domain.Reservation, error) {
	start := time.Now()

	// The transaction runs to its own deadline even if the caller goes
	// away; a reservation attempt is never left half-applied.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LockTimeout)
	defer cancel()

	tx, item, err := s.ledger.LockAndRead(opCtx, sku)
	if err != nil {
		s.record("reserve", start, err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock inventory: %w", err)
	}

	available := item.Available()
	if available < quantity {
		tx.Rollback()
		err := &domain.InsufficientStockError{Available: available, Requested: quantity}
		s.record("reserve", start, err)
		return nil, err
	}

	updated, err := tx.UpdateReserved(opCtx, sku, quantity)
	if err != nil {
		tx.Rollback()
		s.record("reserve", start, err)
		return nil, fmt.Errorf("update reserved: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.record("reserve", start, err)
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	s.invalidate(ctx, sku)
	s.gauge(updated)
	s.record("reserve", start, nil)

	now := time.Now().UTC()
	res := &domain.Reservation{
		ID:        uuid.NewString(),
		SKU:       sku,
		Quantity:  quantity,
		OrderID:   orderID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ReservationTTL),
	}
	s.publish(ctx, domain.StockEvent{
		Kind:          domain.StockReserved,
		SKU:           sku,
		Quantity:      quantity,
		Available:     updated.Available(),
		OrderID:       orderID,
		ReservationID: res.ID,
		OccurredAt:    now,
	})
	return res, nil
}

// Release returns quantity units of sku to the available pool. A single
// conditional update guarantees reserved never goes negative; zero affected
// rows means either an unknown sku or an over-release, and the two are not
// distinguished to the caller.
func (s *InventoryService) Release(ctx context.Context, sku string, quantity int, orderID string) error {
	start := time.Now()

	err := s.ledger.ReleaseReserved(ctx, sku, quantity)
	s.record("release", start, err)
	if err != nil {
		if errors.Is(err, domain.ErrNothingToRelease) {
			return domain.ErrNothingToRelease
		}
		return fmt.Errorf("release stock: %w", err)
	}

	s.invalidate(ctx, sku)
	s.publish(ctx, domain.StockEvent{
		Kind:       domain.StockReleased,
		SKU:        sku,
		Quantity:   quantity,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Adjust applies a manual correction to the on-hand quantity, clamped at
// zero. It may pull quantity below the reserved count; that transient is
// allowed and is not reconciled here.
func (s *InventoryService) Adjust(ctx context.Context, sku string, delta int, reason string) (*domain.InventoryItem, error) {
	start := time.Now()

	item, err := s.ledger.Adjust(ctx, sku, delta)
	s.record("adjust", start, err)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	s.invalidate(ctx, sku)
	s.gauge(item)
	s.publish(ctx, domain.StockEvent{
		Kind:       domain.StockAdjusted,
		SKU:        sku,
		Quantity:   delta,
		Available:  item.Available(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	return item, nil
}

// GetBySKU serves the cached read path: cache first, ledger on miss, then
// repopulate. Every cache failure downgrades to a miss.
func (s *InventoryService) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	start := time.Now()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey(sku))
		if err == nil {
			var item domain.InventoryItem
			if err := json.Unmarshal(cached, &item); err == nil {
				s.record("get", start, nil)
				return &item, nil
			}
		} else if !errors.Is(err, port.ErrCacheMiss) {
			log.Printf("cache get %s: %v", sku, err)
		}
	}

	item, err := s.ledger.GetBySKU(ctx, sku)
	s.record("get", start, err)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}

	if s.cache != nil {
		if body, err := json.Marshal(item); err == nil {
			if err := s.cache.Set(ctx, cacheKey(sku), body, s.cfg.CacheTTL); err != nil {
				log.Printf("cache set %s: %v", sku, err)
			}
		}
	}
	return item, nil
}

// List returns a page of the ledger ordered by sku plus the total count.
// page is 1-indexed and clamped to >= 1; perPage is clamped to [1, 100].
func (s *InventoryService) List(ctx context.Context, page, perPage int) ([]domain.InventoryItem, int64, error) {
	start := time.Now()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	items, total, err := s.ledger.List(ctx, (page-1)*perPage, perPage)
	s.record("list", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory: %w", err)
	}

	for i := range items {
		s.gauge(&items[i])
	}
	return items, total, nil
}

// LowStock reads live ledger data, never the cache: a stale alert defeats
// its purpose.
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.LowStockAlert, error) {
	start := time.Now()

	alerts, err := s.ledger.LowStock(ctx)
	s.record("low_stock", start, err)
	if err != nil {
		return nil, fmt.Errorf("low stock query: %w", err)
	}

	if s.sink != nil {
		s.sink.SetLowStockCount(len(alerts))
	}
	return alerts, nil
}

func cacheKey(sku string) string {
	return "inventory:" + sku
}

// invalidate drops the cache entry after a committed mutation. One attempt
// only; staleness self-heals within the cache TTL.
func (s *InventoryService) invalidate(ctx context.Context, sku string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(sku)); err != nil {
		log.Printf("cache invalidate %s: %v", sku, err)
	}
}

func (s *InventoryService) publish(ctx context.Context, event domain.StockEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("publish %s event for %s: %v", event.Kind, event.SKU, err)
	}
}

func (s *InventoryService) gauge(item *domain.InventoryItem) {
	if s.sink != nil {
		s.sink.SetStockLevel(item.SKU, item.Warehouse, item.Available())
	}
}

func (s *InventoryService) record(operation string, start time.Time, err error) {
	if s.sink == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.sink.RecordOperation(operation, outcome, time.Since(start).Seconds())
}

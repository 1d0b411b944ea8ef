package port

import (
	"context"

	"github.com/stockops/inventory-service/internal/core/domain"
)

// MetricsSink receives operation outcomes and stock gauges. The rendering
// format is the sink's business.
type MetricsSink interface {
	RecordOperation(operation, outcome string, seconds float64)
	SetStockLevel(sku, warehouse string, available int)
	SetLowStockCount(n int)
}

// EventPublisher emits stock events after committed mutations. Publishing is
// best-effort; failures are logged by the caller and never propagated.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.StockEvent) error
}

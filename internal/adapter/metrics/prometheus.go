// Package metrics implements the observability sink on Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusSink struct {
	operations *prometheus.HistogramVec
	stockLevel *prometheus.GaugeVec
	lowStock   prometheus.Gauge
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	factory := promauto.With(reg)
	return &PrometheusSink{
		operations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventory_operation_duration_seconds",
			Help:    "Duration of inventory operations by outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		stockLevel: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inventory_stock_available",
			Help: "Available stock (quantity minus reserved) per sku",
		}, []string{"sku", "warehouse"}),
		lowStock: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_low_stock_items",
			Help: "Number of items below their low stock threshold",
		}),
	}
}

func (p *PrometheusSink) RecordOperation(operation, outcome string, seconds float64) {
	p.operations.WithLabelValues(operation, outcome).Observe(seconds)
}

func (p *PrometheusSink) SetStockLevel(sku, warehouse string, available int) {
	p.stockLevel.WithLabelValues(sku, warehouse).Set(float64(available))
}

func (p *PrometheusSink) SetLowStockCount(n int) {
	p.lowStock.Set(float64(n))
}

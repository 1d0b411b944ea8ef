package domain

import "time"

// Reservation confirms a successful claim against available stock. The
// caller is expected to release the claim before ExpiresAt; there is no
// server-side expiry sweep.
type Reservation struct {
	ID        string    `json:"reservation_id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	OrderID   string    `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type StockEventKind string

const (
	StockReserved StockEventKind = "reserved"
	StockReleased StockEventKind = "released"
	StockAdjusted StockEventKind = "adjusted"
)

// StockEvent is published after a committed mutation so downstream services
// can react without querying the ledger.
type StockEvent struct {
	Kind          StockEventKind `json:"kind"`
	SKU           string         `json:"sku"`
	Quantity      int            `json:"quantity"`
	Available     int            `json:"available"`
	OrderID       string         `json:"order_id,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	ReservationID string         `json:"reservation_id,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

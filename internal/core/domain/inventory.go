package domain

import "time"

type InventoryItem struct {
	ID                string    `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Quantity          int       `json:"quantity"`
	Reserved          int       `json:"reserved"`
	Warehouse         string    `json:"warehouse"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Available is the sellable remainder. It can go negative after a manual
// adjustment pulls quantity below the reserved count; that state is allowed
// and persists until the next release.
func (i InventoryItem) Available() int {
	return i.Quantity - i.Reserved
}

func (i InventoryItem) IsLowStock() bool {
	return i.Available() < i.LowStockThreshold
}

type LowStockAlert struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Threshold int    `json:"threshold"`
	Warehouse string `json:"warehouse"`
}

package stock

import (
	"time"

	"github.com/google/uuid"
)

// StockStatus summarises on-hand quantity against the reorder threshold.
type StockStatus string

const (
	StatusInStock    StockStatus = "IN_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// Default audit reasons applied when the caller supplies none.
const (
	ReasonReceived = "Stock received"
	ReasonConsumed = "Stock consumed"
)

// ProductStock is the per-(product, warehouse) quantity row.
type ProductStock struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	WarehouseID   uuid.UUID  `json:"warehouse_id"`
	Quantity      int64      `json:"quantity"`
	LastRestocked *time.Time `json:"last_restocked,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Adjustment is an immutable audit record of one stock mutation.
type Adjustment struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Delta       int64     `json:"adjustment"`
	Reason      string    `json:"reason"`
	Actor       string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdjustmentInput describes a requested stock mutation.
type AdjustmentInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Delta       int64
	Reason      string
	Actor       string
}

// WarehouseStock is one warehouse's quantity for a product, used in
// product detail views.
type WarehouseStock struct {
	WarehouseID       uuid.UUID  `json:"warehouse_id"`
	WarehouseName     string     `json:"warehouse_name"`
	WarehouseLocation string     `json:"warehouse_location"`
	Quantity          int64      `json:"quantity"`
	LastRestocked     *time.Time `json:"last_restocked,omitempty"`
}

// ProductWithStock is the product list projection with aggregate stock.
type ProductWithStock struct {
	ID               uuid.UUID        `json:"id"`
	SKU              string           `json:"sku"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	ReorderThreshold int64            `json:"reorder_threshold"`
	ReorderQuantity  int64            `json:"reorder_quantity"`
	SupplierID       uuid.UUID        `json:"supplier_id"`
	SupplierName     string           `json:"supplier_name,omitempty"`
	TotalStock       int64            `json:"total_stock"`
	Status           StockStatus      `json:"stock_status"`
	WarehouseStocks  []WarehouseStock `json:"warehouse_stocks"`
}

// StatusFor derives the stock status for a quantity and threshold.
func StatusFor(quantity, threshold int64) StockStatus {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity < threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

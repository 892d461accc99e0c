package warehouses

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse represents a storage location with a hard capacity.
// CurrentStock is a denormalized aggregate maintained by the stock ledger;
// nothing in this package writes it.
type Warehouse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Capacity     int64     `json:"capacity"`
	CurrentStock int64     `json:"current_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Utilization float64 `json:"utilization_percentage"`
}

// InventoryRow is one stocked product inside a warehouse detail view.
type InventoryRow struct {
	ProductID        uuid.UUID  `json:"product_id"`
	ProductName      string     `json:"product_name"`
	SKU              string     `json:"sku"`
	Quantity         int64      `json:"quantity"`
	ReorderThreshold int64      `json:"reorder_threshold"`
	SupplierName     string     `json:"supplier_name"`
	LastRestocked    *time.Time `json:"last_restocked,omitempty"`
}

// Detail is a warehouse with its stocked inventory.
type Detail struct {
	Warehouse
	Inventory []InventoryRow `json:"inventory"`
}

package products

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog entry. ReorderThreshold is the minimum
// desired on-hand quantity; ReorderQuantity the default replenishment size.
type Product struct {
	ID               uuid.UUID `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	ReorderQuantity  int64     `json:"reorder_quantity"`
	SupplierID       uuid.UUID `json:"supplier_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status is the purchase order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further transitions are legal from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanAdvanceTo reports whether the forward transition s -> next is legal.
// Cancellation is a reserved terminal state, not a transition handled here.
func (s Status) CanAdvanceTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusCompleted
	default:
		return false
	}
}

// PurchaseOrder is a replenishment order against one (product, warehouse) pair.
// QuantityOrdered is fixed at creation and never mutated.
type PurchaseOrder struct {
	ID              uuid.UUID  `json:"id"`
	OrderNumber     string     `json:"order_number"`
	ProductID       uuid.UUID  `json:"product_id"`
	SupplierID      uuid.UUID  `json:"supplier_id"`
	WarehouseID     uuid.UUID  `json:"warehouse_id"`
	QuantityOrdered int64      `json:"quantity_ordered"`
	OrderDate       time.Time  `json:"order_date"`
	ExpectedArrival time.Time  `json:"expected_arrival"`
	ActualArrival   *time.Time `json:"actual_arrival,omitempty"`
	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OrderView is a purchase order joined with its reference entity names.
type OrderView struct {
	PurchaseOrder
	ProductName       string `json:"product_name"`
	ProductSKU        string `json:"product_sku"`
	SupplierName      string `json:"supplier_name"`
	SupplierEmail     string `json:"supplier_email"`
	WarehouseName     string `json:"warehouse_name"`
	WarehouseLocation string `json:"warehouse_location"`
}

// CreateOrderInput describes an order creation request. SupplierID defaults
// to the product's own supplier when nil.
type CreateOrderInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Quantity    int64
	SupplierID  *uuid.UUID
	Notes       string
}

// ListFilter narrows ListOrders results; zero values impose no constraint.
type ListFilter struct {
	Status      Status
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
}

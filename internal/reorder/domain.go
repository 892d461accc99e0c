package reorder

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Candidate is one (product, warehouse) pair the scan selected for
// replenishment, with the snapshot values the decision was based on.
type Candidate struct {
	ProductID         uuid.UUID
	WarehouseID       uuid.UUID
	SupplierID        uuid.UUID
	ProductName       string
	WarehouseName     string
	CurrentQuantity   int64
	ReorderThreshold  int64
	ReorderQuantity   int64
	PendingQuantity   int64
	AvailableCapacity int64
	SuggestedQuantity int64
}

// ScanResult summarises one completed scan.
type ScanResult struct {
	Candidates    int           `json:"candidates"`
	OrdersCreated int           `json:"orders_created"`
	Failures      int           `json:"failures"`
	Duration      time.Duration `json:"duration"`
}

// Monitor lifecycle states.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrAlreadyStarted occurs when Start is called outside the Idle state.
var ErrAlreadyStarted = errors.New("reorder: monitor already started")

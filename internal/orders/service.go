package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/stock"
)

// Lead time applied to every new order's expected arrival.
const expectedArrivalLead = 72 * time.Hour

// WarehouseInfo is the capacity snapshot read under lock during creation.
type WarehouseInfo struct {
	Capacity     int64
	CurrentStock int64
}

// TxRepository exposes the transactional operations used by the engine.
type TxRepository interface {
	GetProductSupplier(ctx context.Context, productID uuid.UUID) (uuid.UUID, error)
	GetWarehouseForUpdate(ctx context.Context, warehouseID uuid.UUID) (WarehouseInfo, error)
	SumPendingQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error)
	InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error)
	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (PurchaseOrder, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status Status, arrivedAt *time.Time) error

	// Ledger exposes stock operations bound to the same transaction.
	Ledger() stock.TxRepository
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListOrders(ctx context.Context, filter ListFilter) ([]OrderView, error)
}

// LedgerPort is the stock ledger surface the engine drives on completion.
type LedgerPort interface {
	Apply(ctx context.Context, tx stock.TxRepository, input stock.AdjustmentInput) (int64, error)
}

// Service creates and completes purchase orders.
type Service struct {
	repo   RepositoryPort
	ledger LedgerPort
	logger *slog.Logger
}

// NewService constructs the order engine.
func NewService(repo RepositoryPort, ledger LedgerPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, ledger: ledger, logger: logger}
}

// CreateOrder inserts a PENDING order for the pair, clamping the requested
// quantity to the warehouse capacity still free net of in-flight orders.
// The whole check-and-insert runs in one transaction with the warehouse row
// locked, so two concurrent creations cannot both observe a stale pending sum.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (PurchaseOrder, error) {
	if input.ProductID == uuid.Nil || input.WarehouseID == uuid.Nil {
		return PurchaseOrder{}, fmt.Errorf("orders: product and warehouse required: %w", shared.ErrValidation)
	}
	if input.Quantity <= 0 {
		return PurchaseOrder{}, fmt.Errorf("orders: quantity must be positive: %w", shared.ErrValidation)
	}

	var created PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		productSupplier, err := tx.GetProductSupplier(ctx, input.ProductID)
		if err != nil {
			return err
		}
		warehouse, err := tx.GetWarehouseForUpdate(ctx, input.WarehouseID)
		if err != nil {
			return err
		}

		pending, err := tx.SumPendingQuantity(ctx, input.ProductID, input.WarehouseID)
		if err != nil {
			return err
		}
		availableCapacity := warehouse.Capacity - warehouse.CurrentStock - pending
		if availableCapacity <= 0 {
			return &shared.CapacityExceededError{Available: 0, Requested: input.Quantity}
		}

		quantity := input.Quantity
		if quantity > availableCapacity {
			quantity = availableCapacity
		}

		supplierID := productSupplier
		if input.SupplierID != nil && *input.SupplierID != uuid.Nil {
			supplierID = *input.SupplierID
		}

		now := time.Now().UTC()
		order := PurchaseOrder{
			ProductID:       input.ProductID,
			SupplierID:      supplierID,
			WarehouseID:     input.WarehouseID,
			QuantityOrdered: quantity,
			OrderDate:       now,
			ExpectedArrival: now.Add(expectedArrivalLead),
			Status:          StatusPending,
			Notes:           input.Notes,
		}
		created, err = tx.InsertOrder(ctx, order)
		return err
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	if s.logger != nil {
		s.logger.Info("purchase order created",
			slog.String("order_number", created.OrderNumber),
			slog.String("product_id", created.ProductID.String()),
			slog.String("warehouse_id", created.WarehouseID.String()),
			slog.Int64("quantity", created.QuantityOrdered))
	}
	return created, nil
}

// CompleteOrder marks the order COMPLETED and posts the received quantity to
// the stock ledger in the same transaction. The order row is locked so
// concurrent completion attempts serialize; the second sees the terminal
// status and fails with ErrInvalidState.
func (s *Service) CompleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orders: order id required: %w", shared.ErrValidation)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == StatusCompleted {
			return fmt.Errorf("orders: order %s already completed: %w", order.OrderNumber, shared.ErrInvalidState)
		}
		if order.Status == StatusCancelled {
			return fmt.Errorf("orders: cannot complete cancelled order %s: %w", order.OrderNumber, shared.ErrInvalidState)
		}

		now := time.Now().UTC()
		if err := tx.SetStatus(ctx, orderID, StatusCompleted, &now); err != nil {
			return err
		}

		_, err = s.ledger.Apply(ctx, tx.Ledger(), stock.AdjustmentInput{
			ProductID:   order.ProductID,
			WarehouseID: order.WarehouseID,
			Delta:       order.QuantityOrdered,
			Reason:      fmt.Sprintf("Purchase order %s completed", order.OrderNumber),
			Actor:       shared.SystemActor,
		})
		return err
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("purchase order completed", slog.String("order_id", orderID.String()))
	}
	return nil
}

// AdvanceStatus moves an order forward along PENDING -> CONFIRMED -> SHIPPED.
// Completion goes through CompleteOrder so the stock increment is applied.
func (s *Service) AdvanceStatus(ctx context.Context, orderID uuid.UUID, next Status) error {
	if next == StatusCompleted {
		return s.CompleteOrder(ctx, orderID)
	}
	if next != StatusConfirmed && next != StatusShipped {
		return fmt.Errorf("orders: cannot transition to %s: %w", next, shared.ErrInvalidState)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanAdvanceTo(next) {
			return fmt.Errorf("orders: illegal transition %s -> %s for %s: %w",
				order.Status, next, order.OrderNumber, shared.ErrInvalidState)
		}
		return tx.SetStatus(ctx, orderID, next, nil)
	})
}

// ListOrders returns orders matching the filter, newest first.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]OrderView, error) {
	return s.repo.ListOrders(ctx, filter)
}

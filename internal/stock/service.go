package stock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/shared"
)

// LockedStock is the pair row plus its warehouse aggregate, read under
// FOR UPDATE so both stay pinned for the rest of the transaction.
type LockedStock struct {
	Quantity      int64
	LastRestocked *time.Time
	Capacity      int64
	CurrentStock  int64
}

// TxRepository exposes the transactional operations used by the ledger.
type TxRepository interface {
	GetStockForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (LockedStock, error)
	SumOtherStock(ctx context.Context, warehouseID, exceptProductID uuid.UUID) (int64, error)
	UpdateStockQuantity(ctx context.Context, productID, warehouseID uuid.UUID, quantity int64, restockedAt *time.Time) error
	UpdateWarehouseStock(ctx context.Context, warehouseID uuid.UUID, total int64) error
	InsertAdjustment(ctx context.Context, adj Adjustment) error
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ProductsWithStock(ctx context.Context) ([]ProductWithStock, error)
	ProductDetail(ctx context.Context, productID uuid.UUID) (ProductWithStock, error)
	ListAdjustments(ctx context.Context, productID uuid.UUID, limit int) ([]Adjustment, error)
}

// Service is the stock ledger. AdjustStock and Apply are the only legal
// writers of pair quantities and warehouse aggregates.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds the ledger service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AdjustStock applies a signed delta to one (product, warehouse) pair in a
// single transaction and returns the new quantity.
func (s *Service) AdjustStock(ctx context.Context, input AdjustmentInput) (int64, error) {
	if input.ProductID == uuid.Nil || input.WarehouseID == uuid.Nil {
		return 0, fmt.Errorf("stock: product and warehouse required: %w", shared.ErrValidation)
	}
	if input.Delta == 0 {
		return 0, fmt.Errorf("stock: adjustment must be non-zero: %w", shared.ErrValidation)
	}
	var newQuantity int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		qty, err := s.Apply(ctx, tx, input)
		if err != nil {
			return err
		}
		newQuantity = qty
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.logger != nil {
		s.logger.Info("stock adjusted",
			slog.String("product_id", input.ProductID.String()),
			slog.String("warehouse_id", input.WarehouseID.String()),
			slog.Int64("delta", input.Delta),
			slog.Int64("new_quantity", newQuantity))
	}
	return newQuantity, nil
}

// Apply runs the ledger mutation inside a caller-owned transaction. Order
// completion uses this so the status flip and the stock increment commit
// together.
func (s *Service) Apply(ctx context.Context, tx TxRepository, input AdjustmentInput) (int64, error) {
	current, err := tx.GetStockForUpdate(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return 0, err
	}

	newQuantity := current.Quantity + input.Delta
	if newQuantity < 0 {
		return 0, &shared.InsufficientStockError{
			Available: current.Quantity,
			Requested: -input.Delta,
		}
	}

	otherTotal, err := tx.SumOtherStock(ctx, input.WarehouseID, input.ProductID)
	if err != nil {
		return 0, err
	}
	newWarehouseTotal := otherTotal + newQuantity
	if newWarehouseTotal > current.Capacity {
		requested := input.Delta
		if requested < 0 {
			requested = -requested
		}
		return 0, &shared.CapacityExceededError{
			Available: current.Capacity - otherTotal,
			Requested: requested,
		}
	}

	restockedAt := current.LastRestocked
	if input.Delta > 0 {
		now := time.Now().UTC()
		restockedAt = &now
	}
	if err := tx.UpdateStockQuantity(ctx, input.ProductID, input.WarehouseID, newQuantity, restockedAt); err != nil {
		return 0, err
	}
	if err := tx.UpdateWarehouseStock(ctx, input.WarehouseID, newWarehouseTotal); err != nil {
		return 0, err
	}

	reason := input.Reason
	if reason == "" {
		if input.Delta > 0 {
			reason = ReasonReceived
		} else {
			reason = ReasonConsumed
		}
	}
	actor := input.Actor
	if actor == "" {
		actor = shared.ActorFromContext(ctx)
	}
	adj := Adjustment{
		ProductID:   input.ProductID,
		WarehouseID: input.WarehouseID,
		Delta:       input.Delta,
		Reason:      reason,
		Actor:       actor,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.InsertAdjustment(ctx, adj); err != nil {
		return 0, err
	}

	return newQuantity, nil
}

// ProductsWithStock lists all products with per-warehouse breakdown and
// derived stock status.
func (s *Service) ProductsWithStock(ctx context.Context) ([]ProductWithStock, error) {
	return s.repo.ProductsWithStock(ctx)
}

// ProductDetail returns one product with its stock levels.
func (s *Service) ProductDetail(ctx context.Context, productID uuid.UUID) (ProductWithStock, error) {
	if productID == uuid.Nil {
		return ProductWithStock{}, fmt.Errorf("stock: product required: %w", shared.ErrValidation)
	}
	return s.repo.ProductDetail(ctx, productID)
}

// ListAdjustments returns the audit trail for a product, newest first.
func (s *Service) ListAdjustments(ctx context.Context, productID uuid.UUID, limit int) ([]Adjustment, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("stock: product required: %w", shared.ErrValidation)
	}
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListAdjustments(ctx, productID, limit)
}

package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if id == uuid.Nil {
		return Product{}, fmt.Errorf("products: invalid product ID: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if strings.TrimSpace(product.SKU) == "" {
		return Product{}, fmt.Errorf("products: SKU is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(product.Name) == "" {
		return Product{}, fmt.Errorf("products: name is required: %w", shared.ErrValidation)
	}
	if product.ReorderThreshold < 0 || product.ReorderQuantity < 0 {
		return Product{}, fmt.Errorf("products: reorder values must be non-negative: %w", shared.ErrValidation)
	}
	if product.SupplierID == uuid.Nil {
		return Product{}, fmt.Errorf("products: supplier is required: %w", shared.ErrValidation)
	}
	if product.ReorderQuantity == 0 {
		product.ReorderQuantity = 100
	}
	return s.repo.Create(ctx, product)
}

// Delete removes a product. Its stock rows cascade away with the product, so
// each holding warehouse's current_stock must drop by the same quantity in
// the same transaction, with the warehouse rows locked for the duration.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("products: invalid product ID: %w", shared.ErrValidation)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		stocked, err := tx.LockStockedWarehouses(ctx, id)
		if err != nil {
			return err
		}
		for _, ws := range stocked {
			if ws.Quantity == 0 {
				continue
			}
			if err := tx.ReduceWarehouseStock(ctx, ws.WarehouseID, ws.Quantity); err != nil {
				return err
			}
		}
		return tx.DeleteProduct(ctx, id)
	})
}

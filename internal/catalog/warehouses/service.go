package warehouses

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Warehouse, error) {
	return s.repo.List(ctx)
}

// Get returns a warehouse with its stocked inventory.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	if id == uuid.Nil {
		return Detail{}, fmt.Errorf("warehouses: invalid warehouse ID: %w", shared.ErrValidation)
	}
	warehouse, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	inventory, err := s.repo.Inventory(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if inventory == nil {
		inventory = []InventoryRow{}
	}
	return Detail{Warehouse: warehouse, Inventory: inventory}, nil
}

func (s *Service) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	if err := s.validate(warehouse); err != nil {
		return Warehouse{}, err
	}
	return s.repo.Create(ctx, warehouse)
}

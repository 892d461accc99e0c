package warehouses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/shared"
)

type memoryRepo struct {
	warehouses map[uuid.UUID]Warehouse
	inventory  map[uuid.UUID][]InventoryRow
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		warehouses: make(map[uuid.UUID]Warehouse),
		inventory:  make(map[uuid.UUID][]InventoryRow),
	}
}

func (r *memoryRepo) List(ctx context.Context) ([]Warehouse, error) {
	out := make([]Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		out = append(out, w)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return Warehouse{}, shared.ErrNotFound
	}
	return w, nil
}

func (r *memoryRepo) Inventory(ctx context.Context, id uuid.UUID) ([]InventoryRow, error) {
	return r.inventory[id], nil
}

func (r *memoryRepo) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	warehouse.ID = uuid.New()
	r.warehouses[warehouse.ID] = warehouse
	return warehouse, nil
}

func TestCreateWarehouseValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Warehouse{Location: "Chicago, IL", Capacity: 100})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Warehouse{Name: "Central", Capacity: 100})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Warehouse{Name: "Central", Location: "Chicago, IL", Capacity: 0})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(ctx, Warehouse{Name: "Central", Location: "Chicago, IL", Capacity: 5000})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
}

func TestGetWarehouseDetail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Warehouse{Name: "West Coast Hub", Location: "Los Angeles, CA", Capacity: 7500})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "West Coast Hub", detail.Name)
	require.NotNil(t, detail.Inventory, "inventory must marshal as [] when empty")
	require.Empty(t, detail.Inventory)

	repo.inventory[created.ID] = []InventoryRow{{ProductName: "HD Webcam", SKU: "WEBCAM-005", Quantity: 12}}
	detail, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Inventory, 1)

	_, err = svc.Get(ctx, uuid.Nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Get(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/shared"
)

type memoryRepo struct {
	suppliers map[uuid.UUID]Supplier
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{suppliers: make(map[uuid.UUID]Supplier)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Supplier, error) {
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier.ID = uuid.New()
	r.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.suppliers, id)
	return nil
}

func validSupplier() Supplier {
	return Supplier{
		Name:    "TechSupply Co.",
		Email:   "orders@techsupply.com",
		Phone:   "+1-555-0100",
		Address: "123 Tech Street, Silicon Valley, CA 94000",
	}
}

func TestCreateSupplier(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), validSupplier())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "TechSupply Co.", got.Name)
}

func TestCreateSupplierValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Supplier)
	}{
		{"missing name", func(s *Supplier) { s.Name = "  " }},
		{"bad email", func(s *Supplier) { s.Email = "not-an-email" }},
		{"missing phone", func(s *Supplier) { s.Phone = "" }},
		{"missing address", func(s *Supplier) { s.Address = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			supplier := validSupplier()
			tc.mutate(&supplier)
			_, err := svc.Create(ctx, supplier)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestGetSupplierNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Get(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteSupplier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSupplier())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrNotFound)
}

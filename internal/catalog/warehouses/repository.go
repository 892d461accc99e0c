package warehouses

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockpilot/stockpilot/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Warehouse, error)
	Get(ctx context.Context, id uuid.UUID) (Warehouse, error)
	Inventory(ctx context.Context, id uuid.UUID) ([]InventoryRow, error)
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Warehouse, error) {
	const query = `
		SELECT id, name, location, capacity, current_stock, created_at, updated_at
		FROM warehouses
		ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &w.CurrentStock, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		w.Utilization = utilization(w.CurrentStock, w.Capacity)
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Warehouse, error) {
	const query = `
		SELECT id, name, location, capacity, current_stock, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w Warehouse
	err := r.db.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &w.CurrentStock, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, fmt.Errorf("warehouses: not found: %w", shared.ErrNotFound)
		}
		return Warehouse{}, err
	}
	w.Utilization = utilization(w.CurrentStock, w.Capacity)
	return w, nil
}

func (r *repository) Inventory(ctx context.Context, id uuid.UUID) ([]InventoryRow, error) {
	const query = `
		SELECT ps.product_id, p.name, p.sku, ps.quantity, p.reorder_threshold,
		       COALESCE(s.name, ''), ps.last_restocked
		FROM product_stocks ps
		JOIN products p ON p.id = ps.product_id
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE ps.warehouse_id = $1 AND ps.quantity > 0
		ORDER BY p.name`
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inventory []InventoryRow
	for rows.Next() {
		var row InventoryRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.SKU, &row.Quantity,
			&row.ReorderThreshold, &row.SupplierName, &row.LastRestocked); err != nil {
			return nil, err
		}
		inventory = append(inventory, row)
	}
	return inventory, rows.Err()
}

func (r *repository) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	const query = `
		INSERT INTO warehouses (name, location, capacity, current_stock, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, warehouse.Name, warehouse.Location, warehouse.Capacity, now).Scan(&warehouse.ID)
	if err != nil {
		return Warehouse{}, err
	}
	warehouse.CurrentStock = 0
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now
	return warehouse, nil
}

func utilization(currentStock, capacity int64) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Round(float64(currentStock)/float64(capacity)*10000) / 100
}

package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockpilot/stockpilot/internal/platform/db"
	"github.com/stockpilot/stockpilot/internal/shared"
)

// StockedWarehouse is one warehouse quantity a product holds at delete time.
type StockedWarehouse struct {
	WarehouseID uuid.UUID
	Quantity    int64
}

// TxRepository exposes the transactional operations behind product deletion.
type TxRepository interface {
	LockStockedWarehouses(ctx context.Context, productID uuid.UUID) ([]StockedWarehouse, error)
	ReduceWarehouseStock(ctx context.Context, warehouseID uuid.UUID, by int64) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	const query = `
		SELECT id, sku, name, COALESCE(description, ''), reorder_threshold, reorder_quantity,
		       supplier_id, created_at, updated_at
		FROM products WHERE id = $1`
	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.SKU, &p.Name, &p.Description,
		&p.ReorderThreshold, &p.ReorderQuantity, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("products: not found: %w", shared.ErrNotFound)
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	const query = `
		INSERT INTO products (sku, name, description, reorder_threshold, reorder_quantity, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, product.SKU, product.Name, product.Description,
		product.ReorderThreshold, product.ReorderQuantity, product.SupplierID, now).Scan(&product.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Product{}, fmt.Errorf("products: sku %s already exists: %w", product.SKU, shared.ErrDuplicate)
			case "23503":
				return Product{}, fmt.Errorf("products: supplier not found: %w", shared.ErrNotFound)
			}
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

// WithTx executes the callback inside one transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

type txRepo struct {
	tx pgx.Tx
}

// LockStockedWarehouses locks every warehouse holding stock for the product
// and returns the quantities held there.
func (r *txRepo) LockStockedWarehouses(ctx context.Context, productID uuid.UUID) ([]StockedWarehouse, error) {
	const query = `
		SELECT ps.warehouse_id, ps.quantity
		FROM product_stocks ps
		JOIN warehouses w ON w.id = ps.warehouse_id
		WHERE ps.product_id = $1
		FOR UPDATE OF w`
	rows, err := r.tx.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocked []StockedWarehouse
	for rows.Next() {
		var ws StockedWarehouse
		if err := rows.Scan(&ws.WarehouseID, &ws.Quantity); err != nil {
			return nil, err
		}
		stocked = append(stocked, ws)
	}
	return stocked, rows.Err()
}

func (r *txRepo) ReduceWarehouseStock(ctx context.Context, warehouseID uuid.UUID, by int64) error {
	const query = `UPDATE warehouses SET current_stock = current_stock - $2, updated_at = now() WHERE id = $1`
	_, err := r.tx.Exec(ctx, query, warehouseID, by)
	return err
}

// DeleteProduct removes the product row; its stock rows and adjustments
// cascade with it.
func (r *txRepo) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("products: product has purchase orders: %w", shared.ErrReferenced)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("products: not found: %w", shared.ErrNotFound)
	}
	return nil
}

package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockpilot/stockpilot/internal/platform/db"
	"github.com/stockpilot/stockpilot/internal/shared"
)

// Repository persists stock data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// TxRepo wraps an open pgx transaction so another module's transaction can
// run ledger operations against the same connection.
func TxRepo(tx pgx.Tx) TxRepository {
	return &txRepo{tx: tx}
}

// WithTx executes the callback inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *txRepo) GetStockForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (LockedStock, error) {
	const query = `
		SELECT ps.quantity, ps.last_restocked, w.capacity, w.current_stock
		FROM product_stocks ps
		JOIN warehouses w ON w.id = ps.warehouse_id
		WHERE ps.product_id = $1 AND ps.warehouse_id = $2
		FOR UPDATE OF ps, w`
	var locked LockedStock
	err := r.tx.QueryRow(ctx, query, productID, warehouseID).
		Scan(&locked.Quantity, &locked.LastRestocked, &locked.Capacity, &locked.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LockedStock{}, fmt.Errorf("stock: product not found in specified warehouse: %w", shared.ErrNotFound)
		}
		return LockedStock{}, err
	}
	return locked, nil
}

func (r *txRepo) SumOtherStock(ctx context.Context, warehouseID, exceptProductID uuid.UUID) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(quantity), 0)
		FROM product_stocks
		WHERE warehouse_id = $1 AND product_id <> $2`
	var total int64
	if err := r.tx.QueryRow(ctx, query, warehouseID, exceptProductID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *txRepo) UpdateStockQuantity(ctx context.Context, productID, warehouseID uuid.UUID, quantity int64, restockedAt *time.Time) error {
	const query = `
		UPDATE product_stocks
		SET quantity = $3, last_restocked = $4, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2`
	_, err := r.tx.Exec(ctx, query, productID, warehouseID, quantity, restockedAt)
	return err
}

func (r *txRepo) UpdateWarehouseStock(ctx context.Context, warehouseID uuid.UUID, total int64) error {
	const query = `UPDATE warehouses SET current_stock = $2, updated_at = now() WHERE id = $1`
	_, err := r.tx.Exec(ctx, query, warehouseID, total)
	return err
}

func (r *txRepo) InsertAdjustment(ctx context.Context, adj Adjustment) error {
	const query = `
		INSERT INTO stock_adjustments (product_id, warehouse_id, adjustment, reason, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.tx.Exec(ctx, query, adj.ProductID, adj.WarehouseID, adj.Delta, adj.Reason, adj.Actor, adj.CreatedAt)
	return err
}

// ProductsWithStock lists products with supplier name, total stock and
// per-warehouse breakdown.
func (r *Repository) ProductsWithStock(ctx context.Context) ([]ProductWithStock, error) {
	const listQuery = `
		SELECT p.id, p.sku, p.name, COALESCE(p.description, ''),
		       p.reorder_threshold, p.reorder_quantity, p.supplier_id,
		       COALESCE(s.name, ''), COALESCE(ss.total_stock, 0)
		FROM products p
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total_stock
			FROM product_stocks
			GROUP BY product_id
		) ss ON ss.product_id = p.id
		ORDER BY p.name`
	rows, err := r.pool.Query(ctx, listQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductWithStock
	for rows.Next() {
		var p ProductWithStock
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description,
			&p.ReorderThreshold, &p.ReorderQuantity, &p.SupplierID,
			&p.SupplierName, &p.TotalStock); err != nil {
			return nil, err
		}
		p.Status = StatusFor(p.TotalStock, p.ReorderThreshold)
		p.WarehouseStocks = []WarehouseStock{}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byProduct, err := r.warehouseStocks(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if stocks, ok := byProduct[products[i].ID]; ok {
			products[i].WarehouseStocks = stocks
		}
	}
	return products, nil
}

// ProductDetail returns one product with its stock levels.
func (r *Repository) ProductDetail(ctx context.Context, productID uuid.UUID) (ProductWithStock, error) {
	const query = `
		SELECT p.id, p.sku, p.name, COALESCE(p.description, ''),
		       p.reorder_threshold, p.reorder_quantity, p.supplier_id, COALESCE(s.name, '')
		FROM products p
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.id = $1`
	var p ProductWithStock
	err := r.pool.QueryRow(ctx, query, productID).Scan(&p.ID, &p.SKU, &p.Name,
		&p.Description, &p.ReorderThreshold, &p.ReorderQuantity, &p.SupplierID, &p.SupplierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductWithStock{}, fmt.Errorf("stock: product not found: %w", shared.ErrNotFound)
		}
		return ProductWithStock{}, err
	}

	byProduct, err := r.warehouseStocks(ctx, productID)
	if err != nil {
		return ProductWithStock{}, err
	}
	p.WarehouseStocks = byProduct[productID]
	if p.WarehouseStocks == nil {
		p.WarehouseStocks = []WarehouseStock{}
	}
	for _, ws := range p.WarehouseStocks {
		p.TotalStock += ws.Quantity
	}
	p.Status = StatusFor(p.TotalStock, p.ReorderThreshold)
	return p, nil
}

// warehouseStocks loads per-warehouse rows, for one product or all when
// productID is uuid.Nil.
func (r *Repository) warehouseStocks(ctx context.Context, productID uuid.UUID) (map[uuid.UUID][]WarehouseStock, error) {
	query := `
		SELECT ps.product_id, ps.warehouse_id, w.name, w.location, ps.quantity, ps.last_restocked
		FROM product_stocks ps
		JOIN warehouses w ON w.id = ps.warehouse_id`
	args := []any{}
	if productID != uuid.Nil {
		query += ` WHERE ps.product_id = $1`
		args = append(args, productID)
	}
	query += ` ORDER BY w.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]WarehouseStock)
	for rows.Next() {
		var pid uuid.UUID
		var ws WarehouseStock
		if err := rows.Scan(&pid, &ws.WarehouseID, &ws.WarehouseName, &ws.WarehouseLocation, &ws.Quantity, &ws.LastRestocked); err != nil {
			return nil, err
		}
		result[pid] = append(result[pid], ws)
	}
	return result, rows.Err()
}

// ListAdjustments returns audit rows for a product, newest first.
func (r *Repository) ListAdjustments(ctx context.Context, productID uuid.UUID, limit int) ([]Adjustment, error) {
	const query = `
		SELECT id, product_id, warehouse_id, adjustment, COALESCE(reason, ''), user_id, created_at
		FROM stock_adjustments
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.ProductID, &a.WarehouseID, &a.Delta, &a.Reason, &a.Actor, &a.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

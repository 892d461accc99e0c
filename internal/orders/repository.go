package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockpilot/stockpilot/internal/platform/db"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/stock"
)

// Repository persists purchase orders in PostgreSQL.
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

// WithTx executes the callback inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *txRepo) Ledger() stock.TxRepository {
	return stock.TxRepo(r.tx)
}

func (r *txRepo) GetProductSupplier(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	var supplierID uuid.UUID
	err := r.tx.QueryRow(ctx, `SELECT supplier_id FROM products WHERE id = $1`, productID).Scan(&supplierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("orders: product not found: %w", shared.ErrNotFound)
		}
		return uuid.Nil, err
	}
	return supplierID, nil
}

func (r *txRepo) GetWarehouseForUpdate(ctx context.Context, warehouseID uuid.UUID) (WarehouseInfo, error) {
	const query = `SELECT capacity, current_stock FROM warehouses WHERE id = $1 FOR UPDATE`
	var info WarehouseInfo
	err := r.tx.QueryRow(ctx, query, warehouseID).Scan(&info.Capacity, &info.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WarehouseInfo{}, fmt.Errorf("orders: warehouse not found: %w", shared.ErrNotFound)
		}
		return WarehouseInfo{}, err
	}
	return info, nil
}

func (r *txRepo) SumPendingQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(quantity_ordered), 0)
		FROM purchase_orders
		WHERE product_id = $1 AND warehouse_id = $2
		  AND status IN ('PENDING', 'CONFIRMED', 'SHIPPED')`
	var pending int64
	if err := r.tx.QueryRow(ctx, query, productID, warehouseID).Scan(&pending); err != nil {
		return 0, err
	}
	return pending, nil
}

func (r *txRepo) InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	// order_number comes from the order_seq default, keeping assignment
	// strictly increasing across concurrent inserts.
	const query = `
		INSERT INTO purchase_orders
			(product_id, supplier_id, warehouse_id, quantity_ordered, order_date, expected_arrival, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, order_number, created_at, updated_at`
	err := r.tx.QueryRow(ctx, query,
		order.ProductID, order.SupplierID, order.WarehouseID, order.QuantityOrdered,
		order.OrderDate, order.ExpectedArrival, order.Status, nullable(order.Notes),
	).Scan(&order.ID, &order.OrderNumber, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

func (r *txRepo) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (PurchaseOrder, error) {
	const query = `
		SELECT id, order_number, product_id, supplier_id, warehouse_id, quantity_ordered,
		       order_date, expected_arrival, actual_arrival, status, COALESCE(notes, ''),
		       created_at, updated_at
		FROM purchase_orders
		WHERE id = $1
		FOR UPDATE`
	var o PurchaseOrder
	err := r.tx.QueryRow(ctx, query, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.ProductID, &o.SupplierID, &o.WarehouseID, &o.QuantityOrdered,
		&o.OrderDate, &o.ExpectedArrival, &o.ActualArrival, &o.Status, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, fmt.Errorf("orders: order not found: %w", shared.ErrNotFound)
		}
		return PurchaseOrder{}, err
	}
	return o, nil
}

func (r *txRepo) SetStatus(ctx context.Context, orderID uuid.UUID, status Status, arrivedAt *time.Time) error {
	const query = `
		UPDATE purchase_orders
		SET status = $2, actual_arrival = COALESCE($3, actual_arrival), updated_at = now()
		WHERE id = $1`
	_, err := r.tx.Exec(ctx, query, orderID, status, arrivedAt)
	return err
}

// ListOrders returns orders joined with reference names, order_date descending.
func (r *Repository) ListOrders(ctx context.Context, filter ListFilter) ([]OrderView, error) {
	query := `
		SELECT po.id, po.order_number, po.product_id, po.supplier_id, po.warehouse_id,
		       po.quantity_ordered, po.order_date, po.expected_arrival, po.actual_arrival,
		       po.status, COALESCE(po.notes, ''), po.created_at, po.updated_at,
		       p.name, p.sku, s.name, s.email, w.name, w.location
		FROM purchase_orders po
		JOIN products p ON p.id = po.product_id
		JOIN suppliers s ON s.id = po.supplier_id
		JOIN warehouses w ON w.id = po.warehouse_id
		WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.Status != "" {
		argCount++
		query += ` AND po.status = $` + strconv.Itoa(argCount)
		args = append(args, filter.Status)
	}
	if filter.ProductID != uuid.Nil {
		argCount++
		query += ` AND po.product_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ProductID)
	}
	if filter.WarehouseID != uuid.Nil {
		argCount++
		query += ` AND po.warehouse_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.WarehouseID)
	}
	query += ` ORDER BY po.order_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []OrderView
	for rows.Next() {
		var v OrderView
		if err := rows.Scan(
			&v.ID, &v.OrderNumber, &v.ProductID, &v.SupplierID, &v.WarehouseID,
			&v.QuantityOrdered, &v.OrderDate, &v.ExpectedArrival, &v.ActualArrival,
			&v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
			&v.ProductName, &v.ProductSKU, &v.SupplierName, &v.SupplierEmail,
			&v.WarehouseName, &v.WarehouseLocation); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package reorder

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads reorder candidates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCandidates computes the pairs below threshold net of pending orders,
// most depleted first. The whole read phase is a single statement, so the
// candidate set comes from one snapshot; order creation re-validates capacity
// authoritatively in its own transaction.
func (r *Repository) ListCandidates(ctx context.Context) ([]Candidate, error) {
	const query = `
		WITH low_stock AS (
			SELECT ps.product_id, ps.warehouse_id, ps.quantity AS current_quantity,
			       p.reorder_threshold, p.reorder_quantity, p.supplier_id,
			       p.name AS product_name, w.name AS warehouse_name,
			       (w.capacity - w.current_stock) AS available_capacity
			FROM product_stocks ps
			JOIN products p ON ps.product_id = p.id
			JOIN warehouses w ON ps.warehouse_id = w.id
			WHERE ps.quantity < p.reorder_threshold
		),
		pending_orders AS (
			SELECT product_id, warehouse_id, SUM(quantity_ordered) AS pending_quantity
			FROM purchase_orders
			WHERE status IN ('PENDING', 'CONFIRMED', 'SHIPPED')
			GROUP BY product_id, warehouse_id
		)
		SELECT ls.product_id, ls.warehouse_id, ls.supplier_id,
		       ls.product_name, ls.warehouse_name,
		       ls.current_quantity, ls.reorder_threshold, ls.reorder_quantity,
		       COALESCE(po.pending_quantity, 0) AS pending_quantity,
		       ls.available_capacity,
		       LEAST(ls.reorder_quantity, ls.available_capacity - COALESCE(po.pending_quantity, 0)) AS suggested_quantity
		FROM low_stock ls
		LEFT JOIN pending_orders po
			ON ls.product_id = po.product_id AND ls.warehouse_id = po.warehouse_id
		WHERE ls.current_quantity + COALESCE(po.pending_quantity, 0) < ls.reorder_threshold
		  AND LEAST(ls.reorder_quantity, ls.available_capacity - COALESCE(po.pending_quantity, 0)) > 0
		ORDER BY ls.current_quantity ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ProductID, &c.WarehouseID, &c.SupplierID,
			&c.ProductName, &c.WarehouseName,
			&c.CurrentQuantity, &c.ReorderThreshold, &c.ReorderQuantity,
			&c.PendingQuantity, &c.AvailableCapacity, &c.SuggestedQuantity); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/stock"
)

type fakeWarehouse struct {
	capacity int64
	total    int64
}

type fakeStockRow struct {
	quantity      int64
	lastRestocked *time.Time
}

type memoryRepo struct {
	mu          sync.Mutex
	products    map[uuid.UUID]uuid.UUID // product -> supplier
	warehouses  map[uuid.UUID]*fakeWarehouse
	stocks      map[string]*fakeStockRow
	orders      map[uuid.UUID]*PurchaseOrder
	adjustments []stock.Adjustment
	nextOrder   int
	issued      []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:   make(map[uuid.UUID]uuid.UUID),
		warehouses: make(map[uuid.UUID]*fakeWarehouse),
		stocks:     make(map[string]*fakeStockRow),
		orders:     make(map[uuid.UUID]*PurchaseOrder),
		nextOrder:  1000,
	}
}

func pairKey(productID, warehouseID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", productID, warehouseID)
}

func (r *memoryRepo) seedProduct(supplierID uuid.UUID) uuid.UUID {
	productID := uuid.New()
	r.products[productID] = supplierID
	return productID
}

func (r *memoryRepo) seedWarehouse(capacity, current int64) uuid.UUID {
	warehouseID := uuid.New()
	r.warehouses[warehouseID] = &fakeWarehouse{capacity: capacity, total: current}
	return warehouseID
}

func (r *memoryRepo) seedStock(productID, warehouseID uuid.UUID, quantity int64) {
	r.stocks[pairKey(productID, warehouseID)] = &fakeStockRow{quantity: quantity}
}

type memoryTx struct {
	repo *memoryRepo
}

// WithTx serializes callers the way the row locks do in Postgres.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) ListOrders(ctx context.Context, filter ListFilter) ([]OrderView, error) {
	out := make([]OrderView, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, OrderView{PurchaseOrder: *o})
	}
	return out, nil
}

func (tx *memoryTx) GetProductSupplier(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	supplier, ok := tx.repo.products[productID]
	if !ok {
		return uuid.Nil, shared.ErrNotFound
	}
	return supplier, nil
}

func (tx *memoryTx) GetWarehouseForUpdate(ctx context.Context, warehouseID uuid.UUID) (WarehouseInfo, error) {
	wh, ok := tx.repo.warehouses[warehouseID]
	if !ok {
		return WarehouseInfo{}, shared.ErrNotFound
	}
	return WarehouseInfo{Capacity: wh.capacity, CurrentStock: wh.total}, nil
}

func (tx *memoryTx) SumPendingQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int64, error) {
	var total int64
	for _, o := range tx.repo.orders {
		if o.ProductID != productID || o.WarehouseID != warehouseID {
			continue
		}
		switch o.Status {
		case StatusPending, StatusConfirmed, StatusShipped:
			total += o.QuantityOrdered
		}
	}
	return total, nil
}

func (tx *memoryTx) InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	tx.repo.nextOrder++
	order.ID = uuid.New()
	order.OrderNumber = fmt.Sprintf("PO-%08d", tx.repo.nextOrder)
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	stored := order
	tx.repo.orders[order.ID] = &stored
	tx.repo.issued = append(tx.repo.issued, order.OrderNumber)
	return order, nil
}

func (tx *memoryTx) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (PurchaseOrder, error) {
	order, ok := tx.repo.orders[orderID]
	if !ok {
		return PurchaseOrder{}, shared.ErrNotFound
	}
	return *order, nil
}

func (tx *memoryTx) SetStatus(ctx context.Context, orderID uuid.UUID, status Status, arrivedAt *time.Time) error {
	order, ok := tx.repo.orders[orderID]
	if !ok {
		return shared.ErrNotFound
	}
	order.Status = status
	order.ActualArrival = arrivedAt
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (tx *memoryTx) Ledger() stock.TxRepository {
	return &ledgerTx{repo: tx.repo}
}

// ledgerTx implements the stock side of the shared transaction.
type ledgerTx struct {
	repo *memoryRepo
}

func (tx *ledgerTx) GetStockForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (stock.LockedStock, error) {
	row, ok := tx.repo.stocks[pairKey(productID, warehouseID)]
	if !ok {
		return stock.LockedStock{}, shared.ErrNotFound
	}
	wh := tx.repo.warehouses[warehouseID]
	return stock.LockedStock{
		Quantity:      row.quantity,
		LastRestocked: row.lastRestocked,
		Capacity:      wh.capacity,
		CurrentStock:  wh.total,
	}, nil
}

func (tx *ledgerTx) SumOtherStock(ctx context.Context, warehouseID, exceptProductID uuid.UUID) (int64, error) {
	wh := tx.repo.warehouses[warehouseID]
	row := tx.repo.stocks[pairKey(exceptProductID, warehouseID)]
	return wh.total - row.quantity, nil
}

func (tx *ledgerTx) UpdateStockQuantity(ctx context.Context, productID, warehouseID uuid.UUID, quantity int64, restockedAt *time.Time) error {
	row := tx.repo.stocks[pairKey(productID, warehouseID)]
	row.quantity = quantity
	row.lastRestocked = restockedAt
	return nil
}

func (tx *ledgerTx) UpdateWarehouseStock(ctx context.Context, warehouseID uuid.UUID, total int64) error {
	tx.repo.warehouses[warehouseID].total = total
	return nil
}

func (tx *ledgerTx) InsertAdjustment(ctx context.Context, adj stock.Adjustment) error {
	adj.ID = uuid.New()
	tx.repo.adjustments = append(tx.repo.adjustments, adj)
	return nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, stock.NewService(nil, nil), nil)
}

func TestCreateOrderDefaultsSupplier(t *testing.T) {
	repo := newMemoryRepo()
	supplierID := uuid.New()
	productID := repo.seedProduct(supplierID)
	warehouseID := repo.seedWarehouse(1000, 0)
	svc := newTestService(repo)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    50,
	})
	require.NoError(t, err)
	require.Equal(t, supplierID, order.SupplierID)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, int64(50), order.QuantityOrdered)
	require.Regexp(t, `^PO-\d{8}$`, order.OrderNumber)
	require.WithinDuration(t, order.OrderDate.Add(72*time.Hour), order.ExpectedArrival, time.Second)
}

func TestCreateOrderExplicitSupplier(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(1000, 0)
	svc := newTestService(repo)

	override := uuid.New()
	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    10,
		SupplierID:  &override,
	})
	require.NoError(t, err)
	require.Equal(t, override, order.SupplierID)
}

func TestCreateOrderClampsToAvailableCapacity(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	// Capacity 100 with 50 on hand; the first order reserves 10 more.
	warehouseID := repo.seedWarehouse(100, 50)
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), first.QuantityOrdered)

	second, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    60,
	})
	require.NoError(t, err)
	require.Equal(t, int64(40), second.QuantityOrdered, "order must be clamped to remaining capacity")
}

func TestCreateOrderBackToBackClamp(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(100, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	// Two 60-unit requests against 100 free: 60, then clamped to 40.
	first, err := svc.CreateOrder(ctx, CreateOrderInput{ProductID: productID, WarehouseID: warehouseID, Quantity: 60})
	require.NoError(t, err)
	require.Equal(t, int64(60), first.QuantityOrdered)

	second, err := svc.CreateOrder(ctx, CreateOrderInput{ProductID: productID, WarehouseID: warehouseID, Quantity: 60})
	require.NoError(t, err)
	require.Equal(t, int64(40), second.QuantityOrdered)

	// The warehouse is now fully committed.
	_, err = svc.CreateOrder(ctx, CreateOrderInput{ProductID: productID, WarehouseID: warehouseID, Quantity: 1})
	require.ErrorIs(t, err, shared.ErrCapacityExceeded)
}

func TestCreateOrderNoCapacityLeft(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(100, 100)
	svc := newTestService(repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    1,
	})
	require.ErrorIs(t, err, shared.ErrCapacityExceeded)

	var exceeded *shared.CapacityExceededError
	require.ErrorAs(t, err, &exceeded)
	require.Equal(t, int64(0), exceeded.Available)
	require.Empty(t, repo.orders)
}

func TestCreateOrderValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{WarehouseID: uuid.New(), Quantity: 5})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{ProductID: uuid.New(), WarehouseID: uuid.New(), Quantity: 0})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{ProductID: uuid.New(), WarehouseID: uuid.New(), Quantity: -3})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	warehouseID := repo.seedWarehouse(100, 0)
	svc := newTestService(repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		ProductID:   uuid.New(),
		WarehouseID: warehouseID,
		Quantity:    5,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateOrderConcurrent(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(1_000_000, 0)
	svc := newTestService(repo)

	const n = 100
	results := make([]PurchaseOrder, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				ProductID:   productID,
				WarehouseID: warehouseID,
				Quantity:    10,
			})
			if err != nil {
				return err
			}
			results[i] = order
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]bool, n)
	for _, order := range results {
		require.False(t, seen[order.OrderNumber], "order number %s issued twice", order.OrderNumber)
		seen[order.OrderNumber] = true
	}
	require.Len(t, repo.orders, n)

	// Numbers must come out strictly increasing in creation order.
	for i := 1; i < len(repo.issued); i++ {
		require.Less(t, repo.issued[i-1], repo.issued[i])
	}
}

func TestCompleteOrderPostsStock(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(1000, 20)
	repo.seedStock(productID, warehouseID, 20)
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    30,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CompleteOrder(ctx, order.ID))

	stored := repo.orders[order.ID]
	require.Equal(t, StatusCompleted, stored.Status)
	require.NotNil(t, stored.ActualArrival)

	require.Equal(t, int64(50), repo.stocks[pairKey(productID, warehouseID)].quantity)
	require.Equal(t, int64(50), repo.warehouses[warehouseID].total)

	require.Len(t, repo.adjustments, 1)
	adj := repo.adjustments[0]
	require.Equal(t, int64(30), adj.Delta)
	require.Equal(t, fmt.Sprintf("Purchase order %s completed", order.OrderNumber), adj.Reason)
	require.Equal(t, shared.SystemActor, adj.Actor)
}

func TestCompleteOrderTwiceFails(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(1000, 0)
	repo.seedStock(productID, warehouseID, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CompleteOrder(ctx, order.ID))
	err = svc.CompleteOrder(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	// The stock increment must not be applied again.
	require.Equal(t, int64(10), repo.stocks[pairKey(productID, warehouseID)].quantity)
	require.Len(t, repo.adjustments, 1)
}

func TestCompleteCancelledOrderFails(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(1000, 0)
	repo.seedStock(productID, warehouseID, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    10,
	})
	require.NoError(t, err)
	repo.orders[order.ID].Status = StatusCancelled

	err = svc.CompleteOrder(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, int64(0), repo.stocks[pairKey(productID, warehouseID)].quantity)
}

func TestCompleteOrderRespectsCapacity(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	// Room for the order at creation time, then the warehouse fills up.
	warehouseID := repo.seedWarehouse(100, 50)
	repo.seedStock(productID, warehouseID, 50)
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    40,
	})
	require.NoError(t, err)

	repo.stocks[pairKey(productID, warehouseID)].quantity = 90
	repo.warehouses[warehouseID].total = 90

	err = svc.CompleteOrder(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrCapacityExceeded)
}

func TestAdvanceStatus(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(1000, 0)
	repo.seedStock(productID, warehouseID, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    10,
	})
	require.NoError(t, err)

	// Skipping CONFIRMED is illegal.
	err = svc.AdvanceStatus(ctx, order.ID, StatusShipped)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, svc.AdvanceStatus(ctx, order.ID, StatusConfirmed))
	require.Equal(t, StatusConfirmed, repo.orders[order.ID].Status)

	require.NoError(t, svc.AdvanceStatus(ctx, order.ID, StatusShipped))
	require.Equal(t, StatusShipped, repo.orders[order.ID].Status)

	// COMPLETED routes through CompleteOrder and posts stock.
	require.NoError(t, svc.AdvanceStatus(ctx, order.ID, StatusCompleted))
	require.Equal(t, StatusCompleted, repo.orders[order.ID].Status)
	require.Equal(t, int64(10), repo.stocks[pairKey(productID, warehouseID)].quantity)

	err = svc.AdvanceStatus(ctx, order.ID, StatusCancelled)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPendingOrdersCountAgainstCapacity(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.seedProduct(uuid.New())
	warehouseID := repo.seedWarehouse(100, 0)
	repo.seedStock(productID, warehouseID, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, CreateOrderInput{ProductID: productID, WarehouseID: warehouseID, Quantity: 70})
	require.NoError(t, err)
	require.Equal(t, int64(70), first.QuantityOrdered)

	// A completed order frees its pending reservation but occupies stock.
	require.NoError(t, svc.CompleteOrder(ctx, first.ID))

	second, err := svc.CreateOrder(ctx, CreateOrderInput{ProductID: productID, WarehouseID: warehouseID, Quantity: 50})
	require.NoError(t, err)
	require.Equal(t, int64(30), second.QuantityOrdered)
}

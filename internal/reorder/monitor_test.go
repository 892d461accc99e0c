package reorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/orders"
	"github.com/stockpilot/stockpilot/internal/shared"
)

type fakeSource struct {
	mu         sync.Mutex
	candidates []Candidate
	err        error
	calls      int
	notify     chan struct{}
}

func (s *fakeSource) ListCandidates(ctx context.Context) ([]Candidate, error) {
	s.mu.Lock()
	s.calls++
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeOrders struct {
	mu      sync.Mutex
	created []orders.CreateOrderInput
	failFor map[uuid.UUID]error
	next    int
}

func (f *fakeOrders) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (orders.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[input.ProductID]; ok {
		return orders.PurchaseOrder{}, err
	}
	f.created = append(f.created, input)
	f.next++
	return orders.PurchaseOrder{
		ID:              uuid.New(),
		OrderNumber:     fmt.Sprintf("PO-%08d", 1000+f.next),
		ProductID:       input.ProductID,
		WarehouseID:     input.WarehouseID,
		QuantityOrdered: input.Quantity,
		Status:          orders.StatusPending,
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func candidate(current, threshold, suggested int64) Candidate {
	return Candidate{
		ProductID:         uuid.New(),
		WarehouseID:       uuid.New(),
		SupplierID:        uuid.New(),
		ProductName:       "Wireless Mouse",
		WarehouseName:     "Main Distribution Center",
		CurrentQuantity:   current,
		ReorderThreshold:  threshold,
		SuggestedQuantity: suggested,
	}
}

func TestRunScanCreatesOrders(t *testing.T) {
	first := candidate(5, 50, 100)
	second := candidate(12, 30, 75)
	source := &fakeSource{candidates: []Candidate{first, second}}
	engine := &fakeOrders{}
	m := NewMonitor(source, engine, testLogger(), time.Minute)

	result, err := m.RunScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Candidates)
	require.Equal(t, 2, result.OrdersCreated)
	require.Zero(t, result.Failures)

	require.Len(t, engine.created, 2)
	got := engine.created[0]
	require.Equal(t, first.ProductID, got.ProductID)
	require.Equal(t, first.WarehouseID, got.WarehouseID)
	require.Equal(t, int64(100), got.Quantity)
	require.NotNil(t, got.SupplierID)
	require.Equal(t, first.SupplierID, *got.SupplierID)
	require.Equal(t, "Automatic reorder: Stock at 5/50", got.Notes)
}

func TestRunScanContinuesPastFailures(t *testing.T) {
	bad := candidate(0, 50, 100)
	good := candidate(9, 30, 60)
	source := &fakeSource{candidates: []Candidate{bad, good}}
	engine := &fakeOrders{failFor: map[uuid.UUID]error{
		bad.ProductID: &shared.CapacityExceededError{Available: 0, Requested: 100},
	}}
	m := NewMonitor(source, engine, testLogger(), time.Minute)

	result, err := m.RunScan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Candidates)
	require.Equal(t, 1, result.OrdersCreated)
	require.Equal(t, 1, result.Failures)
	require.Len(t, engine.created, 1)
	require.Equal(t, good.ProductID, engine.created[0].ProductID)
}

func TestRunScanSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	m := NewMonitor(source, &fakeOrders{}, testLogger(), time.Minute)

	_, err := m.RunScan(context.Background())
	require.Error(t, err)
}

func TestMonitorLifecycle(t *testing.T) {
	notify := make(chan struct{}, 1)
	source := &fakeSource{notify: notify}
	m := NewMonitor(source, &fakeOrders{}, testLogger(), time.Hour)

	require.Equal(t, StateIdle, m.State())

	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, StateRunning, m.State())

	// Start is not reentrant.
	require.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)

	// The initial scan fires without waiting for the first tick.
	select {
	case <-notify:
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not run")
	}

	m.Stop()
	require.Equal(t, StateStopped, m.State())

	// Stop is idempotent and the loop stays down.
	m.Stop()
	calls := source.callCount()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, calls, source.callCount())
}

func TestMonitorTicks(t *testing.T) {
	notify := make(chan struct{}, 1)
	source := &fakeSource{notify: notify}
	m := NewMonitor(source, &fakeOrders{}, testLogger(), 10*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	// Initial scan plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-notify:
		case <-time.After(2 * time.Second):
			t.Fatalf("scan %d did not run", i)
		}
	}
	require.GreaterOrEqual(t, source.callCount(), 2)
}

func TestStopIdleMonitor(t *testing.T) {
	m := NewMonitor(&fakeSource{}, &fakeOrders{}, testLogger(), time.Minute)
	m.Stop()
	require.Equal(t, StateStopped, m.State())
	require.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)
}

func TestDefaultInterval(t *testing.T) {
	m := NewMonitor(&fakeSource{}, &fakeOrders{}, testLogger(), 0)
	require.Equal(t, DefaultInterval, m.interval)
}

package reorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stockpilot/stockpilot/internal/orders"
)

// DefaultInterval is the scan period when none is configured.
const DefaultInterval = 60 * time.Second

// CandidateSource yields the pairs currently below threshold.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]Candidate, error)
}

// OrderCreator is the order engine surface the monitor drives.
type OrderCreator interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (orders.PurchaseOrder, error)
}

// Monitor periodically scans stock levels and raises purchase orders for the
// shortfall. Each Monitor owns its lifecycle: Idle until Start, Running while
// the loop ticks, Stopped once Stop has cancelled the loop and the in-flight
// scan has drained.
type Monitor struct {
	source   CandidateSource
	orders   OrderCreator
	logger   *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor constructs a Monitor. A non-positive interval falls back to
// DefaultInterval.
func NewMonitor(source CandidateSource, orderSvc OrderCreator, logger *slog.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{source: source, orders: orderSvc, logger: logger, interval: interval}
}

// State reports the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start launches the scan loop: one immediate scan, then one per interval.
// It fails unless the monitor is Idle.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.state = StateRunning
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("reorder monitor started", slog.Duration("interval", m.interval))

	go m.loop(loopCtx)
	return nil
}

// Stop cancels the loop and blocks until the in-flight scan finishes. Safe to
// call more than once; stopping an Idle monitor just marks it Stopped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.state = StateStopped
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	m.logger.Info("reorder monitor stopped")
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.scanTick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scanTick(ctx)
		}
	}
}

// scanTick runs one scan and absorbs every error: a failing tick is logged
// and the monitor waits for the next one.
func (m *Monitor) scanTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := m.RunScan(ctx); err != nil {
		m.logger.Error("reorder scan failed", slog.Any("error", err))
	}
}

// RunScan performs one full scan: read the candidate snapshot, then create
// one order per candidate, most depleted pair first. Candidate selection is a
// best-effort heuristic; CreateOrder's own capacity check is the
// authoritative guard, so a single candidate failing does not abort the scan.
func (m *Monitor) RunScan(ctx context.Context) (ScanResult, error) {
	start := time.Now()

	candidates, err := m.source.ListCandidates(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("reorder: list candidates: %w", err)
	}

	result := ScanResult{Candidates: len(candidates)}
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		supplierID := c.SupplierID
		order, err := m.orders.CreateOrder(ctx, orders.CreateOrderInput{
			ProductID:   c.ProductID,
			WarehouseID: c.WarehouseID,
			Quantity:    c.SuggestedQuantity,
			SupplierID:  &supplierID,
			Notes:       fmt.Sprintf("Automatic reorder: Stock at %d/%d", c.CurrentQuantity, c.ReorderThreshold),
		})
		if err != nil {
			result.Failures++
			m.logger.Warn("auto-reorder failed",
				slog.String("product_id", c.ProductID.String()),
				slog.String("warehouse_id", c.WarehouseID.String()),
				slog.Any("error", err))
			continue
		}
		result.OrdersCreated++
		m.logger.Info("auto-reorder created",
			slog.String("order_number", order.OrderNumber),
			slog.String("product", c.ProductName),
			slog.String("warehouse", c.WarehouseName),
			slog.Int64("quantity", order.QuantityOrdered))
	}

	result.Duration = time.Since(start)
	if result.OrdersCreated > 0 || result.Failures > 0 {
		m.logger.Info("reorder scan complete",
			slog.Int("candidates", result.Candidates),
			slog.Int("orders_created", result.OrdersCreated),
			slog.Int("failures", result.Failures),
			slog.Duration("duration", result.Duration))
	}
	return result, nil
}

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/reorder"
)

type fakeScanner struct {
	result reorder.ScanResult
	err    error
	calls  int
}

func (s *fakeScanner) RunScan(ctx context.Context) (reorder.ScanResult, error) {
	s.calls++
	return s.result, s.err
}

func TestReorderScanHandler(t *testing.T) {
	scanner := &fakeScanner{result: reorder.ScanResult{Candidates: 3, OrdersCreated: 2, Failures: 1}}
	handler := reorderScanHandler(scanner, nil)

	task, err := NewReorderScanTask(ReorderScanPayload{RequestedBy: "ops", RequestedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, scanner.calls)
}

func TestReorderScanHandlerPropagatesError(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("database down")}
	handler := reorderScanHandler(scanner, nil)

	task, err := NewReorderScanTask(ReorderScanPayload{RequestedBy: "ops"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry, "transient failures must stay retryable")
}

func TestReorderScanHandlerSkipsBadPayload(t *testing.T) {
	scanner := &fakeScanner{}
	handler := reorderScanHandler(scanner, nil)

	task := asynq.NewTask(TaskReorderScan, []byte("not json"))
	err := handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, scanner.calls)
}

func TestNewWorkerRequiresScanner(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	require.Error(t, err)
}

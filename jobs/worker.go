package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stockpilot/stockpilot/internal/reorder"
)

// ScanRunner is the reorder surface the worker drives.
type ScanRunner interface {
	RunScan(ctx context.Context) (reorder.ScanResult, error)
}

// Worker wraps the Asynq server processing queued tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Scanner   ScanRunner
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Scanner == nil {
		return nil, errors.New("jobs: scanner required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReorderScan, reorderScanHandler(cfg.Scanner, cfg.Logger))
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

func reorderScanHandler(scanner ScanRunner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload ReorderScanPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		result, err := scanner.RunScan(ctx)
		if err != nil {
			if logger != nil {
				logger.Error("queued reorder scan failed", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("queued reorder scan complete",
				slog.String("requested_by", payload.RequestedBy),
				slog.Int("orders_created", result.OrdersCreated),
				slog.Duration("duration", result.Duration))
		}
		return nil
	}
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

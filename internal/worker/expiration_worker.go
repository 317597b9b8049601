package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/observability"
	"github.com/spec-kit/subscription-service/internal/service"
)

// ExpirationWorker drives the expiration sweep on a fixed interval,
// independent of any request. A failed pass is logged and retried at the
// next tick; it never crashes the process.
type ExpirationWorker struct {
	sweep    *service.ExpirationService
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
}

// NewExpirationWorker constructs the worker.
func NewExpirationWorker(sweep *service.ExpirationService, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *ExpirationWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpirationWorker{
		sweep:    sweep,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
	}
}

// Run executes a pass immediately, then on every tick until ctx is
// cancelled. Intended to be launched in its own goroutine.
func (w *ExpirationWorker) Run(ctx context.Context) {
	w.runPass(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopped")
			return
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

func (w *ExpirationWorker) runPass(ctx context.Context) {
	result, err := w.sweep.ProcessExpired(ctx, time.Now())
	if err != nil {
		w.logger.Error("expiration sweep failed", zap.Error(err))
		return
	}

	w.metrics.RecordSweep(result.Renewed, result.Expired, result.Failed)
	w.logger.Info("expiration sweep completed",
		zap.Int("renewed", result.Renewed),
		zap.Int("expired", result.Expired),
		zap.Int("failed", result.Failed),
	)
}

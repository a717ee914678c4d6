package daemon

import (
	"context"
	"log/slog"
	"time"
)

// HistoryPruner drops recorded placements for windows that have closed.
type HistoryPruner interface {
	PruneHistory() (int, error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops history entries for closed windows so the
// daemon's history does not grow without bound.
type Reconciler struct {
	interval time.Duration
	pruner   HistoryPruner
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, pruner HistoryPruner) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		pruner:   pruner,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

func (r *Reconciler) reconcile() int {
	// A panic here must not take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	removed, err := r.pruner.PruneHistory()
	if err != nil {
		r.logger.Error("reconciler: failed to prune history", "error", err)
		return 0
	}
	if removed > 0 {
		r.logger.Info("reconciler: pruned closed windows", "count", removed)
	}
	return removed
}

// ReconcileNow triggers an immediate reconciliation pass and returns the
// number of entries removed.
func (r *Reconciler) ReconcileNow() int {
	return r.reconcile()
}

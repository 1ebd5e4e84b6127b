package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/testtrack/internal/domain"
)

// DashboardRefresher recomputes the analytics snapshot and repopulates the
// cache. Implemented by service.AnalyticsService.
type DashboardRefresher interface {
	Refresh(ctx context.Context) (*domain.Dashboard, error)
}

// CacheWarmer periodically recomputes the analytics snapshot so dashboard
// reads stay warm between invalidations. Best-effort: a failed refresh is
// logged and retried on the next tick.
type CacheWarmer struct {
	refresher DashboardRefresher
	logger    *slog.Logger
	interval  time.Duration
}

// NewCacheWarmer creates a new cache warmer
func NewCacheWarmer(refresher DashboardRefresher, logger *slog.Logger, interval time.Duration) *CacheWarmer {
	return &CacheWarmer{
		refresher: refresher,
		logger:    logger,
		interval:  interval,
	}
}

// Start begins the warmer loop. It runs one refresh immediately, then on
// every tick until the context is cancelled.
func (w *CacheWarmer) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cache warmer started", slog.Duration("interval", w.interval))

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *CacheWarmer) refresh(ctx context.Context) {
	start := time.Now()
	if _, err := w.refresher.Refresh(ctx); err != nil {
		w.logger.Error("dashboard refresh failed", slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("dashboard refreshed", slog.Duration("took", time.Since(start)))
}

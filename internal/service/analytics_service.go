package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/observability/metrics"
)

// AnalyticsService serves the dashboard snapshot read-through from the cache.
// Writers invalidate the key; a hit here never touches the store.
type AnalyticsService struct {
	analytics domain.AnalyticsRepository
	cache     domain.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	analytics domain.AnalyticsRepository,
	cache domain.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnalyticsService{
		analytics: analytics,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Dashboard returns the aggregate snapshot, from cache when present.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	if cached, err := s.cache.Get(ctx, AnalyticsCacheKey); err == nil {
		dash := &domain.Dashboard{}
		uerr := json.Unmarshal([]byte(cached), dash)
		if uerr == nil {
			metrics.ObserveCacheHit(AnalyticsCacheKey)
			return dash, nil
		}
		s.logger.Warn("discarding undecodable analytics cache entry", slog.String("error", uerr.Error()))
	}
	metrics.ObserveCacheMiss(AnalyticsCacheKey)

	return s.Refresh(ctx)
}

// Refresh recomputes the snapshot from the store and repopulates the cache.
// The warmer calls this on a schedule so dashboard reads stay warm.
func (s *AnalyticsService) Refresh(ctx context.Context) (*domain.Dashboard, error) {
	dash, err := s.analytics.Snapshot()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	payload, err := json.Marshal(dash)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.cache.Set(ctx, AnalyticsCacheKey, string(payload), s.cacheTTL); err != nil {
		// Served fresh from the store regardless; the next read recomputes.
		s.logger.Warn("failed to cache analytics snapshot", slog.String("error", err.Error()))
	}

	return dash, nil
}

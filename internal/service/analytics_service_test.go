package service

import (
	"context"
	"testing"
	"time"
)

func TestDashboardReadThrough(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	cache := newMemCache()
	svc := NewAnalyticsService(repo, cache, time.Hour, nil)

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dash.Counts.TestCases != 2 {
		t.Fatalf("unexpected snapshot: %+v", dash.Counts)
	}
	if repo.snapshots != 1 {
		t.Fatalf("expected 1 store read, got %d", repo.snapshots)
	}
	if _, ok := cache.data[AnalyticsCacheKey]; !ok {
		t.Fatalf("expected snapshot cached")
	}

	// Second read is served from cache.
	if _, err := svc.Dashboard(context.Background()); err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if repo.snapshots != 1 {
		t.Fatalf("expected cache hit, store reads: %d", repo.snapshots)
	}

	// Invalidation forces recomputation.
	cache.Delete(context.Background(), AnalyticsCacheKey)
	if _, err := svc.Dashboard(context.Background()); err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if repo.snapshots != 2 {
		t.Fatalf("expected recompute after invalidation, store reads: %d", repo.snapshots)
	}
}

func TestDashboardDiscardsCorruptCacheEntry(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	cache := newMemCache()
	cache.data[AnalyticsCacheKey] = "{not json"
	svc := NewAnalyticsService(repo, cache, time.Hour, nil)

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dash == nil || repo.snapshots != 1 {
		t.Fatalf("expected fallthrough to store, reads: %d", repo.snapshots)
	}
}

func TestRefreshRepopulatesCache(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	cache := newMemCache()
	svc := NewAnalyticsService(repo, cache, time.Hour, nil)

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, ok := cache.data[AnalyticsCacheKey]; !ok {
		t.Fatalf("expected cache populated by refresh")
	}
}

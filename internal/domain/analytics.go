package domain

import (
	"context"
	"errors"
	"time"
)

// DashboardCounts holds top-level entity counts.
type DashboardCounts struct {
	Projects  int `json:"projects"`
	TestCases int `json:"testCases"`
	Users     int `json:"users"`
}

// StatusCount is one bucket of the execution-status histogram.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PriorityCount is one bucket of the test-case priority histogram.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// DailyCount is one day of the execution time series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Dashboard is the aggregate analytics snapshot served to the dashboard.
type Dashboard struct {
	Counts             DashboardCounts `json:"counts"`
	ExecutionStats     []StatusCount   `json:"executionStats"`
	PriorityStats      []PriorityCount `json:"priorityStats"`
	ExecutionsOverTime []DailyCount    `json:"executionsOverTime"`
}

// AnalyticsRepository computes the dashboard snapshot from the store.
type AnalyticsRepository interface {
	Snapshot() (*Dashboard, error)
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the Read Cache: derived, disposable payloads keyed by string,
// never authoritative, always safe to drop.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

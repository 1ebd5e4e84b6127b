package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresAnalyticsRepository computes dashboard aggregates from PostgreSQL
type PostgresAnalyticsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAnalyticsRepository creates a new analytics repository
func NewPostgresAnalyticsRepository(db *sql.DB, logger *slog.Logger) *PostgresAnalyticsRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnalyticsRepository{
		db:     db,
		logger: logger,
	}
}

// Snapshot runs the aggregate queries behind the dashboard: entity counts,
// the execution-status and priority histograms, and the 7-day daily series.
func (r *PostgresAnalyticsRepository) Snapshot() (*domain.Dashboard, error) {
	dash := &domain.Dashboard{
		ExecutionStats:     []domain.StatusCount{},
		PriorityStats:      []domain.PriorityCount{},
		ExecutionsOverTime: []domain.DailyCount{},
	}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&dash.Counts.Projects); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM test_cases WHERE is_deleted = FALSE`).Scan(&dash.Counts.TestCases); err != nil {
		return nil, fmt.Errorf("failed to count test cases: %w", err)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&dash.Counts.Users); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM test_executions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate execution stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan execution stat: %w", err)
		}
		dash.ExecutionStats = append(dash.ExecutionStats, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.Query(`SELECT priority, COUNT(*) FROM test_cases WHERE is_deleted = FALSE GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate priority stats: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var pc domain.PriorityCount
		if err := prows.Scan(&pc.Priority, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan priority stat: %w", err)
		}
		dash.PriorityStats = append(dash.PriorityStats, pc)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	trows, err := r.db.Query(`
		SELECT TO_CHAR(DATE(execution_date), 'YYYY-MM-DD'), COUNT(*)
		FROM test_executions
		WHERE execution_date > NOW() - INTERVAL '7 days'
		GROUP BY DATE(execution_date)
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate executions over time: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var dc domain.DailyCount
		if err := trows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily execution count: %w", err)
		}
		dash.ExecutionsOverTime = append(dash.ExecutionsOverTime, dc)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	return dash, nil
}

package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresSuiteRepository implements domain.SuiteRepository using PostgreSQL
type PostgresSuiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSuiteRepository creates a new suite repository
func NewPostgresSuiteRepository(db *sql.DB, logger *slog.Logger) *PostgresSuiteRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSuiteRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new test suite
func (r *PostgresSuiteRepository) Create(suite *domain.TestSuite) error {
	query := `
		INSERT INTO test_suites (project_id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		suite.ProjectID,
		suite.Name,
		suite.Description,
		suite.CreatedBy,
	).Scan(&suite.ID, &suite.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create test suite",
			slog.String("name", suite.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create test suite: %w", err)
	}

	return nil
}

// ListByProject returns a project's suites, newest first.
func (r *PostgresSuiteRepository) ListByProject(projectID int64) ([]*domain.TestSuite, error) {
	query := `
		SELECT id, project_id, name, COALESCE(description, ''), created_by, created_at
		FROM test_suites
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test suites: %w", err)
	}
	defer rows.Close()

	var suites []*domain.TestSuite
	for rows.Next() {
		suite := &domain.TestSuite{}
		err := rows.Scan(
			&suite.ID,
			&suite.ProjectID,
			&suite.Name,
			&suite.Description,
			&suite.CreatedBy,
			&suite.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test suite: %w", err)
		}
		suites = append(suites, suite)
	}

	return suites, rows.Err()
}

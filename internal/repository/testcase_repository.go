package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresTestCaseRepository implements domain.TestCaseRepository using PostgreSQL
type PostgresTestCaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTestCaseRepository creates a new test case repository
func NewPostgresTestCaseRepository(db *sql.DB, logger *slog.Logger) *PostgresTestCaseRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTestCaseRepository{
		db:     db,
		logger: logger,
	}
}

const testCaseColumns = `id, project_id, suite_id, title, COALESCE(description, ''), priority, type,
	COALESCE(pre_conditions, ''), COALESCE(post_conditions, ''), assigned_to, status, is_deleted,
	created_by, created_at, updated_at`

func scanTestCase(s interface {
	Scan(dest ...interface{}) error
}) (*domain.TestCase, error) {
	tc := &domain.TestCase{}
	err := s.Scan(
		&tc.ID,
		&tc.ProjectID,
		&tc.SuiteID,
		&tc.Title,
		&tc.Description,
		&tc.Priority,
		&tc.Type,
		&tc.PreConditions,
		&tc.PostConditions,
		&tc.AssignedTo,
		&tc.Status,
		&tc.IsDeleted,
		&tc.CreatedBy,
		&tc.CreatedAt,
		&tc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// CreateWithSteps inserts the test case and its steps in one transaction.
// Any failure rolls back the case and all steps together.
func (r *PostgresTestCaseRepository) CreateWithSteps(tc *domain.TestCase, steps []domain.TestStep) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO test_cases (project_id, suite_id, title, description, priority, type,
			pre_conditions, post_conditions, assigned_to, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, status, created_at, updated_at
	`

	err = tx.QueryRow(
		query,
		tc.ProjectID,
		tc.SuiteID,
		tc.Title,
		tc.Description,
		tc.Priority,
		tc.Type,
		tc.PreConditions,
		tc.PostConditions,
		tc.AssignedTo,
		domain.TestCaseOpen,
		tc.CreatedBy,
	).Scan(&tc.ID, &tc.Status, &tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create test case",
			slog.String("title", tc.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create test case: %w", err)
	}

	if err := insertSteps(tx, tc.ID, steps); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit test case: %w", err)
	}
	return nil
}

// Update replaces the test case row and, when replaceSteps is set, discards
// and re-inserts the step set in the same transaction.
func (r *PostgresTestCaseRepository) Update(tc *domain.TestCase, steps []domain.TestStep, replaceSteps bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE test_cases
		SET project_id = $1, suite_id = $2, title = $3, description = $4, priority = $5,
			type = $6, pre_conditions = $7, post_conditions = $8, assigned_to = $9,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $10 AND is_deleted = FALSE
		RETURNING status, created_by, created_at, updated_at
	`

	err = tx.QueryRow(
		query,
		tc.ProjectID,
		tc.SuiteID,
		tc.Title,
		tc.Description,
		tc.Priority,
		tc.Type,
		tc.PreConditions,
		tc.PostConditions,
		tc.AssignedTo,
		tc.ID,
	).Scan(&tc.Status, &tc.CreatedBy, &tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("test case not found")
		}
		return fmt.Errorf("failed to update test case: %w", err)
	}

	if replaceSteps {
		if _, err := tx.Exec(`DELETE FROM test_steps WHERE test_case_id = $1`, tc.ID); err != nil {
			return fmt.Errorf("failed to clear test steps: %w", err)
		}
		if err := insertSteps(tx, tc.ID, steps); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit test case update: %w", err)
	}
	return nil
}

func insertSteps(tx *sql.Tx, testCaseID int64, steps []domain.TestStep) error {
	for i := range steps {
		step := &steps[i]
		step.TestCaseID = testCaseID
		err := tx.QueryRow(
			`INSERT INTO test_steps (test_case_id, step_number, action, expected_result)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			testCaseID, step.StepNumber, step.Action, step.ExpectedResult,
		).Scan(&step.ID)
		if err != nil {
			return fmt.Errorf("failed to insert test step: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a non-deleted test case by ID
func (r *PostgresTestCaseRepository) GetByID(id int64) (*domain.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE id = $1 AND is_deleted = FALSE`

	tc, err := scanTestCase(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("test case not found")
		}
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return tc, nil
}

// GetSteps returns a test case's steps in declared order.
func (r *PostgresTestCaseRepository) GetSteps(testCaseID int64) ([]domain.TestStep, error) {
	query := `
		SELECT id, test_case_id, step_number, action, expected_result
		FROM test_steps
		WHERE test_case_id = $1
		ORDER BY step_number ASC
	`

	rows, err := r.db.Query(query, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.TestStep
	for rows.Next() {
		var step domain.TestStep
		if err := rows.Scan(&step.ID, &step.TestCaseID, &step.StepNumber, &step.Action, &step.ExpectedResult); err != nil {
			return nil, fmt.Errorf("failed to scan test step: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}

// List returns non-deleted test cases matching the filter, newest first.
func (r *PostgresTestCaseRepository) List(filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE is_deleted = FALSE`
	var args []interface{}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if filter.SuiteID != nil {
		args = append(args, *filter.SuiteID)
		query += fmt.Sprintf(" AND suite_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	return r.queryTestCases(query, args...)
}

// ListPassed returns a project's closed test cases, most recently updated first.
func (r *PostgresTestCaseRepository) ListPassed(projectID int64) ([]*domain.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases
		WHERE project_id = $1 AND status = $2 AND is_deleted = FALSE
		ORDER BY updated_at DESC`
	return r.queryTestCases(query, projectID, domain.TestCaseClosed)
}

func (r *PostgresTestCaseRepository) queryTestCases(query string, args ...interface{}) ([]*domain.TestCase, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var cases []*domain.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		cases = append(cases, tc)
	}

	return cases, rows.Err()
}

// SetStatus updates the lifecycle status and returns the updated row.
func (r *PostgresTestCaseRepository) SetStatus(id int64, status string) (*domain.TestCase, error) {
	query := `UPDATE test_cases SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2
		RETURNING ` + testCaseColumns

	tc, err := scanTestCase(r.db.QueryRow(query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("test case not found")
		}
		return nil, fmt.Errorf("failed to set test case status: %w", err)
	}
	return tc, nil
}

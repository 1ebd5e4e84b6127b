package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresExecutionRepository implements domain.ExecutionRepository using PostgreSQL
type PostgresExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresExecutionRepository creates a new execution repository
func NewPostgresExecutionRepository(db *sql.DB, logger *slog.Logger) *PostgresExecutionRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresExecutionRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserts an append-only execution row. When closeCase is set the test
// case is flipped to closed in the same transaction, so the execution and the
// status transition commit or roll back together.
func (r *PostgresExecutionRepository) Record(exec *domain.TestExecution, closeCase bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO test_executions (test_case_id, executed_by, status, actual_result, comments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, execution_date
	`

	err = tx.QueryRow(
		query,
		exec.TestCaseID,
		exec.ExecutedBy,
		exec.Status,
		exec.ActualResult,
		exec.Comments,
	).Scan(&exec.ID, &exec.ExecutionDate)
	if err != nil {
		r.logger.Error("failed to record execution",
			slog.Int64("test_case_id", exec.TestCaseID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to record execution: %w", err)
	}

	if closeCase {
		_, err := tx.Exec(
			`UPDATE test_cases SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			domain.TestCaseClosed, exec.TestCaseID,
		)
		if err != nil {
			return fmt.Errorf("failed to close test case: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit execution: %w", err)
	}
	return nil
}

// ListByTestCase returns a test case's execution history, newest first, with
// executor usernames joined in.
func (r *PostgresExecutionRepository) ListByTestCase(testCaseID int64) ([]*domain.TestExecution, error) {
	query := `
		SELECT te.id, te.test_case_id, te.executed_by, u.username,
			te.status, COALESCE(te.actual_result, ''), COALESCE(te.comments, ''), te.execution_date
		FROM test_executions te
		JOIN users u ON te.executed_by = u.id
		WHERE te.test_case_id = $1
		ORDER BY te.execution_date DESC
	`

	rows, err := r.db.Query(query, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var executions []*domain.TestExecution
	for rows.Next() {
		exec := &domain.TestExecution{}
		err := rows.Scan(
			&exec.ID,
			&exec.TestCaseID,
			&exec.ExecutedBy,
			&exec.ExecutedByName,
			&exec.Status,
			&exec.ActualResult,
			&exec.Comments,
			&exec.ExecutionDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		executions = append(executions, exec)
	}

	return executions, rows.Err()
}

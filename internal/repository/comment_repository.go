package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresCommentRepository implements domain.CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCommentRepository creates a new comment repository
func NewPostgresCommentRepository(db *sql.DB, logger *slog.Logger) *PostgresCommentRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a comment and fills in the author's username.
func (r *PostgresCommentRepository) Create(comment *domain.Comment) error {
	query := `
		INSERT INTO comments (test_case_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		comment.TestCaseID,
		comment.UserID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create comment",
			slog.Int64("test_case_id", comment.TestCaseID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	err = r.db.QueryRow(`SELECT username FROM users WHERE id = $1`, comment.UserID).Scan(&comment.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to resolve comment author: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetByID(id int64) (*domain.Comment, error) {
	comment := &domain.Comment{}
	err := r.db.QueryRow(
		`SELECT id, test_case_id, user_id, content, created_at FROM comments WHERE id = $1`,
		id,
	).Scan(&comment.ID, &comment.TestCaseID, &comment.UserID, &comment.Content, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ListByTestCase returns a test case's comments, newest first, with usernames.
func (r *PostgresCommentRepository) ListByTestCase(testCaseID int64) ([]*domain.Comment, error) {
	query := `
		SELECT c.id, c.test_case_id, c.user_id, COALESCE(u.username, ''), c.content, c.created_at
		FROM comments c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.test_case_id = $1
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.Query(query, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment := &domain.Comment{}
		err := rows.Scan(
			&comment.ID,
			&comment.TestCaseID,
			&comment.UserID,
			&comment.Username,
			&comment.Content,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// Delete removes a comment row.
func (r *PostgresCommentRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("comment not found")
	}
	return nil
}

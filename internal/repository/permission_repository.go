package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresPermissionRepository implements domain.PermissionRepository using PostgreSQL
type PostgresPermissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPermissionRepository creates a new permission repository
func NewPostgresPermissionRepository(db *sql.DB, logger *slog.Logger) *PostgresPermissionRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPermissionRepository{
		db:     db,
		logger: logger,
	}
}

// Has reports whether the user holds an execution-permission row.
func (r *PostgresPermissionRepository) Has(userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM test_execution_permissions WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check execution permission: %w", err)
	}
	return exists, nil
}

// Grant records an execution permission with its granting admin.
func (r *PostgresPermissionRepository) Grant(userID, grantedBy int64) error {
	_, err := r.db.Exec(
		`INSERT INTO test_execution_permissions (user_id, granted_by) VALUES ($1, $2)`,
		userID, grantedBy,
	)
	if err != nil {
		r.logger.Error("failed to grant execution permission",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to grant execution permission: %w", err)
	}
	return nil
}

// Revoke removes a user's execution permission, reporting whether a row existed.
func (r *PostgresPermissionRepository) Revoke(userID int64) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM test_execution_permissions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to revoke execution permission: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows > 0, nil
}

// List returns all grants joined with user and granter detail, newest first.
func (r *PostgresPermissionRepository) List() ([]*domain.PermissionGrant, error) {
	query := `
		SELECT u.id, u.username, u.email, u.role, p.granted_at,
			COALESCE(granter.username, '')
		FROM test_execution_permissions p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN users granter ON p.granted_by = granter.id
		ORDER BY p.granted_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list execution permissions: %w", err)
	}
	defer rows.Close()

	var grants []*domain.PermissionGrant
	for rows.Next() {
		grant := &domain.PermissionGrant{}
		err := rows.Scan(
			&grant.UserID,
			&grant.Username,
			&grant.Email,
			&grant.Role,
			&grant.GrantedAt,
			&grant.GrantedByUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution permission: %w", err)
		}
		grants = append(grants, grant)
	}

	return grants, rows.Err()
}

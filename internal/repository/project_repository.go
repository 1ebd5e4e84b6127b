package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

// PostgresProjectRepository implements domain.ProjectRepository using PostgreSQL
type PostgresProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProjectRepository creates a new project repository
func NewPostgresProjectRepository(db *sql.DB, logger *slog.Logger) *PostgresProjectRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `id, name, COALESCE(description, ''), COALESCE(version, ''), status, created_by, created_at, updated_at`

// Create inserts a new project
func (r *PostgresProjectRepository) Create(project *domain.Project) error {
	query := `
		INSERT INTO projects (name, description, version, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		project.Name,
		project.Description,
		project.Version,
		project.Status,
		project.CreatedBy,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create project",
			slog.String("name", project.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(id int64) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project := &domain.Project{}
	err := r.db.QueryRow(query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Version,
		&project.Status,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// List returns all projects, newest first.
func (r *PostgresProjectRepository) List() ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	return r.queryProjects(query)
}

// ListAssignedTo returns projects containing at least one test case assigned
// to the user.
func (r *PostgresProjectRepository) ListAssignedTo(userID int64) ([]*domain.Project, error) {
	query := `
		SELECT DISTINCT p.id, p.name, COALESCE(p.description, ''), COALESCE(p.version, ''), p.status, p.created_by, p.created_at, p.updated_at
		FROM projects p
		JOIN test_cases tc ON p.id = tc.project_id
		WHERE tc.assigned_to = $1
		ORDER BY p.created_at DESC
	`
	return r.queryProjects(query, userID)
}

func (r *PostgresProjectRepository) queryProjects(query string, args ...interface{}) ([]*domain.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project := &domain.Project{}
		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Version,
			&project.Status,
			&project.CreatedBy,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Update applies a partial update; nil fields keep the stored value.
func (r *PostgresProjectRepository) Update(id int64, upd *domain.ProjectUpdate) (*domain.Project, error) {
	query := `
		UPDATE projects
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    version = COALESCE($3, version),
		    status = COALESCE($4, status),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING ` + projectColumns

	project := &domain.Project{}
	err := r.db.QueryRow(query, upd.Name, upd.Description, upd.Version, upd.Status, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Version,
		&project.Status,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// Delete removes the project row. Dependent rows cascade.
func (r *PostgresProjectRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("project not found")
	}

	return nil
}

// AddMember enrolls a user into a project with a role label.
func (r *PostgresProjectRepository) AddMember(projectID, userID int64, role string) error {
	_, err := r.db.Exec(
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)
		 ON CONFLICT (project_id, user_id) DO NOTHING`,
		projectID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

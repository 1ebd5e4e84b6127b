package database

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
)

type migration struct {
	name string
	stmt string
}

// Ordered, additive migrations. Statements use IF NOT EXISTS where Postgres
// supports it; where it does not (ALTER TABLE ... ADD COLUMN on older
// servers), duplicate-object errors are treated as benign no-ops so the set
// can be re-run safely against any schema revision.
var migrations = []migration{
	{"create_users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'tester',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"create_projects", `
		CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			version TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			created_by BIGINT REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"create_project_members", `
		CREATE TABLE IF NOT EXISTS project_members (
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id),
			role TEXT,
			PRIMARY KEY (project_id, user_id)
		)`},
	{"create_test_suites", `
		CREATE TABLE IF NOT EXISTS test_suites (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			created_by BIGINT REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"create_test_cases", `
		CREATE TABLE IF NOT EXISTS test_cases (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			suite_id BIGINT REFERENCES test_suites(id),
			title TEXT NOT NULL,
			description TEXT,
			priority TEXT NOT NULL,
			type TEXT NOT NULL,
			pre_conditions TEXT,
			post_conditions TEXT,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_by BIGINT REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"create_test_steps", `
		CREATE TABLE IF NOT EXISTS test_steps (
			id BIGSERIAL PRIMARY KEY,
			test_case_id BIGINT NOT NULL REFERENCES test_cases(id) ON DELETE CASCADE,
			step_number INT NOT NULL,
			action TEXT NOT NULL,
			expected_result TEXT NOT NULL
		)`},
	{"create_test_executions", `
		CREATE TABLE IF NOT EXISTS test_executions (
			id BIGSERIAL PRIMARY KEY,
			test_case_id BIGINT NOT NULL REFERENCES test_cases(id) ON DELETE CASCADE,
			executed_by BIGINT REFERENCES users(id),
			status TEXT NOT NULL,
			actual_result TEXT,
			comments TEXT,
			execution_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"add_test_case_assigned_to", `
		ALTER TABLE test_cases ADD COLUMN IF NOT EXISTS assigned_to BIGINT REFERENCES users(id)`},
	{"add_test_case_status", `
		ALTER TABLE test_cases ADD COLUMN IF NOT EXISTS status TEXT NOT NULL DEFAULT 'open'`},
	{"create_test_execution_permissions", `
		CREATE TABLE IF NOT EXISTS test_execution_permissions (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			granted_by BIGINT REFERENCES users(id),
			granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"create_comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			test_case_id BIGINT NOT NULL REFERENCES test_cases(id) ON DELETE CASCADE,
			user_id BIGINT REFERENCES users(id),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
}

// Migrate applies the additive migration set. Duplicate-object errors are
// swallowed so re-runs are safe; any other failure is logged and the next
// migration still runs. Deployment proceeds either way.
func Migrate(db *sql.DB, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, m := range migrations {
		if _, err := db.Exec(m.stmt); err != nil {
			if isBenignMigrationError(err) {
				logger.Debug("migration already applied", slog.String("migration", m.name))
				continue
			}
			logger.Error("migration failed, continuing",
				slog.String("migration", m.name),
				slog.String("error", err.Error()),
			)
			continue
		}
		logger.Debug("migration applied", slog.String("migration", m.name))
	}
}

// isBenignMigrationError reports whether the error means the schema object
// already exists: duplicate column, duplicate table, duplicate object, or a
// unique violation from concurrent deploys.
func isBenignMigrationError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "42701", "42P07", "42710", "23505":
		return true
	}
	return false
}

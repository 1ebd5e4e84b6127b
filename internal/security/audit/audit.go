package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for privileged mutations: permission
// grants and revokes, test-case reopens, project deletions.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, actorID int64, action, resource string, resourceID int64, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.Int64("resource_id", resourceID),
		slog.Int64("actor_id", actorID),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogPermissionGrant(ctx context.Context, adminID, granteeID int64) {
	al.LogAction(ctx, adminID, "grant_execution_permission", "user", granteeID, "")
}

func (al *Logger) LogPermissionRevoke(ctx context.Context, adminID, granteeID int64) {
	al.LogAction(ctx, adminID, "revoke_execution_permission", "user", granteeID, "")
}

func (al *Logger) LogReopen(ctx context.Context, adminID, testCaseID int64) {
	al.LogAction(ctx, adminID, "reopen", "test_case", testCaseID, "")
}

func (al *Logger) LogProjectDelete(ctx context.Context, adminID, projectID int64) {
	al.LogAction(ctx, adminID, "delete", "project", projectID, "")
}

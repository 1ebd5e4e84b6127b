package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/observability/metrics"
)

// AnalyticsCacheKey holds the cached dashboard snapshot; any write that can
// change the aggregates deletes it.
const AnalyticsCacheKey = "analytics:dashboard"

// ProjectsCacheKey holds the cached all-projects listing served to admins.
const ProjectsCacheKey = "projects:all"

// ExecutionService owns the test-case lifecycle gate: who may record an
// execution, and how the outcome mutates test-case state.
type ExecutionService struct {
	executions  domain.ExecutionRepository
	testCases   domain.TestCaseRepository
	permissions domain.PermissionRepository
	cache       domain.Cache
	logger      *slog.Logger
}

// NewExecutionService creates a new execution service
func NewExecutionService(
	executions domain.ExecutionRepository,
	testCases domain.TestCaseRepository,
	permissions domain.PermissionRepository,
	cache domain.Cache,
	logger *slog.Logger,
) *ExecutionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecutionService{
		executions:  executions,
		testCases:   testCases,
		permissions: permissions,
		cache:       cache,
		logger:      logger,
	}
}

// RecordExecutionInput is the request to record one execution attempt.
type RecordExecutionInput struct {
	TestCaseID   int64  `json:"test_case_id"`
	Status       string `json:"status"`
	ActualResult string `json:"actual_result"`
	Comments     string `json:"comments"`
}

// ExecutionResult is the created execution plus whether this call closed the
// test case.
type ExecutionResult struct {
	*domain.TestExecution
	TestCaseClosed bool `json:"testCaseClosed"`
}

func validExecutionStatus(status string) bool {
	for _, s := range domain.ExecutionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RecordExecution applies the execution gate and state transition:
//
//  1. the test case must exist;
//  2. a closed test case is frozen for everyone but admins;
//  3. non-admins need an execution-permission grant;
//  4. the execution row is inserted append-only and a Pass outcome closes the
//     test case in the same transaction.
//
// On success the analytics cache key is invalidated so the next dashboard
// read recomputes.
func (s *ExecutionService) RecordExecution(ctx context.Context, actor domain.Actor, input RecordExecutionInput) (*ExecutionResult, error) {
	fields := map[string]string{}
	if input.TestCaseID == 0 {
		fields["test_case_id"] = "test_case_id is required"
	}
	if !validExecutionStatus(input.Status) {
		fields["status"] = "status must be one of Pass, Fail, Blocked, Skipped, Pending"
	}
	if len(fields) > 0 {
		return nil, apperr.Invalid("invalid execution", fields)
	}

	tc, err := s.testCases.GetByID(input.TestCaseID)
	if err != nil {
		return nil, err
	}

	if tc.Status == domain.TestCaseClosed && !actor.IsAdmin() {
		metrics.ObserveExecutionDenied("closed")
		return nil, apperr.Forbidden(
			"This test case is closed. Only admins can reopen and re-test it.",
			"closed",
		)
	}

	if !actor.IsAdmin() {
		has, err := s.permissions.Has(actor.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if !has {
			metrics.ObserveExecutionDenied("no_permission")
			return nil, apperr.Forbidden(
				"You do not have permission to execute tests. Please contact an admin to grant you execution permission.",
				"no_permission",
			)
		}
	}

	exec := &domain.TestExecution{
		TestCaseID:   input.TestCaseID,
		ExecutedBy:   actor.ID,
		Status:       input.Status,
		ActualResult: input.ActualResult,
		Comments:     input.Comments,
	}

	closes := input.Status == domain.ExecutionPass
	if err := s.executions.Record(exec, closes); err != nil {
		return nil, apperr.Internal(err)
	}

	s.invalidateAnalytics(ctx)
	metrics.ObserveExecution(input.Status)

	s.logger.Info("execution recorded",
		slog.Int64("test_case_id", input.TestCaseID),
		slog.Int64("executed_by", actor.ID),
		slog.String("status", input.Status),
		slog.Bool("test_case_closed", closes),
	)

	return &ExecutionResult{TestExecution: exec, TestCaseClosed: closes}, nil
}

// History returns a test case's executions, newest first.
func (s *ExecutionService) History(testCaseID int64) ([]*domain.TestExecution, error) {
	executions, err := s.executions.ListByTestCase(testCaseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return executions, nil
}

func (s *ExecutionService) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.Delete(ctx, AnalyticsCacheKey); err != nil {
		// Stale analytics expire with the TTL; a failed invalidation is not
		// worth failing the write.
		s.logger.Warn("failed to invalidate analytics cache", slog.String("error", err.Error()))
		return
	}
	metrics.ObserveCacheInvalidate(AnalyticsCacheKey)
}

package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/observability/metrics"
	"github.com/yourorg/testtrack/internal/security/audit"
)

// AssignmentNotifier sends the test-case assignment email. Implemented by
// notify.Mailer; faked in tests.
type AssignmentNotifier interface {
	SendAssignment(to, testCaseTitle, assignerName string, testCaseID, projectID int64) error
}

// TestCaseService owns test-case CRUD with wholesale step replacement, the
// assignment notification side effect, and the admin reopen transition.
type TestCaseService struct {
	testCases domain.TestCaseRepository
	users     domain.UserRepository
	cache     domain.Cache
	notifier  AssignmentNotifier
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewTestCaseService creates a new test case service
func NewTestCaseService(
	testCases domain.TestCaseRepository,
	users domain.UserRepository,
	cache domain.Cache,
	notifier AssignmentNotifier,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *TestCaseService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TestCaseService{
		testCases: testCases,
		users:     users,
		cache:     cache,
		notifier:  notifier,
		audit:     auditLog,
		logger:    logger,
	}
}

// StepInput is one caller-supplied step; step_number is stored verbatim.
type StepInput struct {
	StepNumber     int    `json:"step_number"`
	Action         string `json:"action"`
	ExpectedResult string `json:"expected_result"`
}

// TestCaseInput is the full test-case payload. Updates are whole-resource
// replacement: a present Steps array replaces the stored set, a nil one
// leaves it untouched.
type TestCaseInput struct {
	ProjectID      int64       `json:"project_id"`
	SuiteID        *int64      `json:"suite_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Priority       string      `json:"priority"`
	Type           string      `json:"type"`
	PreConditions  string      `json:"pre_conditions"`
	PostConditions string      `json:"post_conditions"`
	AssignedTo     *int64      `json:"assigned_to"`
	Steps          []StepInput `json:"steps"`
}

// TestCaseWithSteps pairs a test case with its ordered steps.
type TestCaseWithSteps struct {
	TestCase *domain.TestCase  `json:"testCase"`
	Steps    []domain.TestStep `json:"steps"`
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (input *TestCaseInput) validate() error {
	fields := map[string]string{}
	if input.ProjectID == 0 {
		fields["project_id"] = "project_id is required"
	}
	if input.Title == "" {
		fields["title"] = "title is required"
	}
	if !contains(domain.TestCasePriorities, input.Priority) {
		fields["priority"] = "priority must be one of Low, Medium, High, Critical"
	}
	if !contains(domain.TestCaseTypes, input.Type) {
		fields["type"] = "type must be one of Functional, Integration, Regression, Smoke, UI, API"
	}
	for _, step := range input.Steps {
		if step.Action == "" || step.ExpectedResult == "" {
			fields["steps"] = "each step needs an action and an expected_result"
			break
		}
	}
	if len(fields) > 0 {
		return apperr.Invalid("invalid test case", fields)
	}
	return nil
}

func toSteps(inputs []StepInput) []domain.TestStep {
	steps := make([]domain.TestStep, 0, len(inputs))
	for _, in := range inputs {
		steps = append(steps, domain.TestStep{
			StepNumber:     in.StepNumber,
			Action:         in.Action,
			ExpectedResult: in.ExpectedResult,
		})
	}
	return steps
}

// Create inserts a test case and its steps as one unit and fires the
// assignment notification when an assignee is set.
func (s *TestCaseService) Create(ctx context.Context, actor domain.Actor, input TestCaseInput) (*TestCaseWithSteps, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tc := &domain.TestCase{
		ProjectID:      input.ProjectID,
		SuiteID:        input.SuiteID,
		Title:          input.Title,
		Description:    input.Description,
		Priority:       input.Priority,
		Type:           input.Type,
		PreConditions:  input.PreConditions,
		PostConditions: input.PostConditions,
		AssignedTo:     input.AssignedTo,
		CreatedBy:      actor.ID,
	}

	steps := toSteps(input.Steps)
	if err := s.testCases.CreateWithSteps(tc, steps); err != nil {
		return nil, apperr.Internal(err)
	}

	s.invalidateAnalytics(ctx)

	if tc.AssignedTo != nil {
		s.dispatchAssignment(actor, tc)
	}

	s.logger.Info("test case created",
		slog.Int64("test_case_id", tc.ID),
		slog.Int64("project_id", tc.ProjectID),
		slog.Int("steps", len(steps)),
	)

	return &TestCaseWithSteps{TestCase: tc, Steps: steps}, nil
}

// Update replaces the test case as a whole. A present steps array discards
// and re-inserts the step set in the same transaction; assignment changes
// fire the notification.
func (s *TestCaseService) Update(ctx context.Context, actor domain.Actor, id int64, input TestCaseInput, replaceSteps bool) (*TestCaseWithSteps, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	previous, err := s.testCases.GetByID(id)
	if err != nil {
		return nil, err
	}

	tc := &domain.TestCase{
		ID:             id,
		ProjectID:      input.ProjectID,
		SuiteID:        input.SuiteID,
		Title:          input.Title,
		Description:    input.Description,
		Priority:       input.Priority,
		Type:           input.Type,
		PreConditions:  input.PreConditions,
		PostConditions: input.PostConditions,
		AssignedTo:     input.AssignedTo,
	}

	steps := toSteps(input.Steps)
	if err := s.testCases.Update(tc, steps, replaceSteps); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx)

	if newlyAssigned(previous.AssignedTo, tc.AssignedTo) {
		s.dispatchAssignment(actor, tc)
	}

	if !replaceSteps {
		steps, err = s.testCases.GetSteps(id)
		if err != nil {
			return nil, apperr.Internal(err)
		}
	}

	return &TestCaseWithSteps{TestCase: tc, Steps: steps}, nil
}

// newlyAssigned reports whether the assignee was set or changed.
func newlyAssigned(previous, current *int64) bool {
	if current == nil {
		return false
	}
	return previous == nil || *previous != *current
}

// Get returns a test case with its ordered steps.
func (s *TestCaseService) Get(id int64) (*TestCaseWithSteps, error) {
	tc, err := s.testCases.GetByID(id)
	if err != nil {
		return nil, err
	}
	steps, err := s.testCases.GetSteps(id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &TestCaseWithSteps{TestCase: tc, Steps: steps}, nil
}

// List returns non-deleted test cases matching the filter.
func (s *TestCaseService) List(filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	cases, err := s.testCases.List(filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cases, nil
}

// ListPassed returns a project's closed test cases.
func (s *TestCaseService) ListPassed(projectID int64) ([]*domain.TestCase, error) {
	cases, err := s.testCases.ListPassed(projectID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cases, nil
}

// Reopen sets a closed test case back to open. Admin only; reopening an
// already-open case succeeds and leaves the status unchanged.
func (s *TestCaseService) Reopen(ctx context.Context, actor domain.Actor, id int64) (*domain.TestCase, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("Only admins can reopen test cases", "admin_required")
	}

	tc, err := s.testCases.SetStatus(id, domain.TestCaseOpen)
	if err != nil {
		return nil, err
	}

	s.audit.LogReopen(ctx, actor.ID, id)
	return tc, nil
}

// dispatchAssignment resolves the assignee and sends the notification on a
// goroutine. At-most-once: failures are counted and logged, never retried,
// never surfaced to the caller.
func (s *TestCaseService) dispatchAssignment(actor domain.Actor, tc *domain.TestCase) {
	assignee, err := s.users.GetByID(*tc.AssignedTo)
	if err != nil {
		s.logger.Warn("assignment notification skipped: assignee not found",
			slog.Int64("assigned_to", *tc.AssignedTo),
		)
		metrics.ObserveNotification("skipped")
		return
	}

	go func() {
		if err := s.notifier.SendAssignment(assignee.Email, tc.Title, actor.Username, tc.ID, tc.ProjectID); err != nil {
			s.logger.Warn("assignment notification failed",
				slog.Int64("test_case_id", tc.ID),
				slog.String("error", err.Error()),
			)
			metrics.ObserveNotification("error")
			return
		}
		metrics.ObserveNotification("sent")
	}()
}

func (s *TestCaseService) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.Delete(ctx, AnalyticsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", slog.String("error", err.Error()))
		return
	}
	metrics.ObserveCacheInvalidate(AnalyticsCacheKey)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/security/audit"
)

type testCaseFixture struct {
	svc      *TestCaseService
	cases    *memTestCaseRepo
	users    *memUserRepo
	cache    *memCache
	notifier *fakeNotifier
	admin    domain.Actor
	lead     domain.Actor
	assignee *domain.User
}

func newTestCaseFixture(t *testing.T) *testCaseFixture {
	t.Helper()

	cases := newMemTestCaseRepo()
	users := newMemUserRepo()
	cache := newMemCache()
	notifier := newFakeNotifier()

	assignee := &domain.User{Username: "tessa", Email: "tessa@example.com", Role: "tester"}
	if err := users.Create(assignee); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return &testCaseFixture{
		svc:      NewTestCaseService(cases, users, cache, notifier, audit.NewLogger(nil), nil),
		cases:    cases,
		users:    users,
		cache:    cache,
		notifier: notifier,
		admin:    domain.Actor{ID: 10, Username: "root", Role: "admin"},
		lead:     domain.Actor{ID: 11, Username: "lena", Role: "test-lead"},
		assignee: assignee,
	}
}

func validInput() TestCaseInput {
	return TestCaseInput{
		ProjectID: 1,
		Title:     "login works",
		Priority:  "High",
		Type:      "Functional",
		Steps: []StepInput{
			{StepNumber: 1, Action: "open login page", ExpectedResult: "form shown"},
			{StepNumber: 2, Action: "submit credentials", ExpectedResult: "dashboard shown"},
		},
	}
}

func TestCreateTestCaseWithSteps(t *testing.T) {
	f := newTestCaseFixture(t)

	result, err := f.svc.Create(context.Background(), f.lead, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.TestCase.ID == 0 {
		t.Fatalf("expected test case id")
	}
	if result.TestCase.Status != domain.TestCaseOpen {
		t.Fatalf("expected open status, got %q", result.TestCase.Status)
	}
	if result.TestCase.CreatedBy != f.lead.ID {
		t.Fatalf("expected creator %d, got %d", f.lead.ID, result.TestCase.CreatedBy)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(result.Steps))
	}
	if !f.cache.deleted(AnalyticsCacheKey) {
		t.Fatalf("expected analytics cache invalidation")
	}
}

func TestCreateTestCaseValidation(t *testing.T) {
	f := newTestCaseFixture(t)

	cases := []struct {
		name   string
		mutate func(*TestCaseInput)
	}{
		{"missing project", func(in *TestCaseInput) { in.ProjectID = 0 }},
		{"missing title", func(in *TestCaseInput) { in.Title = "" }},
		{"bad priority", func(in *TestCaseInput) { in.Priority = "Urgent" }},
		{"bad type", func(in *TestCaseInput) { in.Type = "Manual" }},
		{"empty step action", func(in *TestCaseInput) { in.Steps[0].Action = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := f.svc.Create(context.Background(), f.lead, in); !apperr.IsCode(err, apperr.CodeInvalid) {
				t.Fatalf("expected invalid error, got %v", err)
			}
		})
	}
}

func TestUpdateReplacesStepsWholesale(t *testing.T) {
	f := newTestCaseFixture(t)

	created, err := f.svc.Create(context.Background(), f.lead, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	in := validInput()
	in.Title = "login works on retry"
	in.Steps = []StepInput{{StepNumber: 5, Action: "only step", ExpectedResult: "done"}}

	updated, err := f.svc.Update(context.Background(), f.lead, created.TestCase.ID, in, true)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Steps) != 1 {
		t.Fatalf("expected 1 step after replacement, got %d", len(updated.Steps))
	}
	if updated.Steps[0].StepNumber != 5 {
		t.Fatalf("step_number must be stored verbatim, got %d", updated.Steps[0].StepNumber)
	}

	stored, _ := f.cases.GetSteps(created.TestCase.ID)
	if len(stored) != 1 {
		t.Fatalf("expected old steps discarded, got %d", len(stored))
	}
}

func TestUpdateWithoutStepsKeepsStoredSet(t *testing.T) {
	f := newTestCaseFixture(t)

	created, err := f.svc.Create(context.Background(), f.lead, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	in := validInput()
	in.Title = "renamed"
	in.Steps = nil

	updated, err := f.svc.Update(context.Background(), f.lead, created.TestCase.ID, in, false)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Steps) != 2 {
		t.Fatalf("expected stored steps untouched, got %d", len(updated.Steps))
	}
	if updated.TestCase.Title != "renamed" {
		t.Fatalf("expected title updated, got %q", updated.TestCase.Title)
	}
}

func TestAssignmentTriggersNotification(t *testing.T) {
	f := newTestCaseFixture(t)

	in := validInput()
	in.AssignedTo = &f.assignee.ID

	if _, err := f.svc.Create(context.Background(), f.lead, in); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	select {
	case to := <-f.notifier.sent:
		if to != f.assignee.Email {
			t.Fatalf("expected notification to %q, got %q", f.assignee.Email, to)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected assignment notification")
	}
}

func TestUnchangedAssignmentDoesNotNotify(t *testing.T) {
	f := newTestCaseFixture(t)

	in := validInput()
	in.AssignedTo = &f.assignee.ID
	created, err := f.svc.Create(context.Background(), f.lead, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	<-f.notifier.sent // drain the create notification

	if _, err := f.svc.Update(context.Background(), f.lead, created.TestCase.ID, in, false); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	select {
	case <-f.notifier.sent:
		t.Fatalf("unchanged assignee must not re-notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReopenIsAdminOnlyAndIdempotent(t *testing.T) {
	f := newTestCaseFixture(t)

	created, err := f.svc.Create(context.Background(), f.lead, validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := created.TestCase.ID

	if _, err := f.svc.Reopen(context.Background(), f.lead, id); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}

	f.cases.cases[id].Status = domain.TestCaseClosed
	tc, err := f.svc.Reopen(context.Background(), f.admin, id)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if tc.Status != domain.TestCaseOpen {
		t.Fatalf("expected open after reopen, got %q", tc.Status)
	}

	// Reopening an already-open case succeeds and changes nothing.
	tc, err = f.svc.Reopen(context.Background(), f.admin, id)
	if err != nil {
		t.Fatalf("idempotent reopen failed: %v", err)
	}
	if tc.Status != domain.TestCaseOpen {
		t.Fatalf("expected open, got %q", tc.Status)
	}
}

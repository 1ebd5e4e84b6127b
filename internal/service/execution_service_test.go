package service

import (
	"context"
	"testing"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

type executionFixture struct {
	svc       *ExecutionService
	cases     *memTestCaseRepo
	perms     *memPermissionRepo
	execs     *memExecutionRepo
	cache     *memCache
	openCase  *domain.TestCase
	admin     domain.Actor
	tester    domain.Actor
	unGranted domain.Actor
}

func newExecutionFixture(t *testing.T) *executionFixture {
	t.Helper()

	cases := newMemTestCaseRepo()
	execs := newMemExecutionRepo(cases)
	perms := newMemPermissionRepo()
	cache := newMemCache()

	tc := &domain.TestCase{ProjectID: 1, Title: "login works", Priority: "High", Type: "Functional", CreatedBy: 1}
	if err := cases.CreateWithSteps(tc, nil); err != nil {
		t.Fatalf("seed test case: %v", err)
	}

	f := &executionFixture{
		svc:       NewExecutionService(execs, cases, perms, cache, nil),
		cases:     cases,
		perms:     perms,
		execs:     execs,
		cache:     cache,
		openCase:  tc,
		admin:     domain.Actor{ID: 1, Username: "root", Role: "admin"},
		tester:    domain.Actor{ID: 2, Username: "tessa", Role: "tester"},
		unGranted: domain.Actor{ID: 3, Username: "newbie", Role: "tester"},
	}
	perms.Grant(f.tester.ID, f.admin.ID)
	return f
}

func TestRecordExecutionUnknownTestCase(t *testing.T) {
	f := newExecutionFixture(t)

	_, err := f.svc.RecordExecution(context.Background(), f.tester, RecordExecutionInput{
		TestCaseID: 999, Status: domain.ExecutionFail,
	})
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordExecutionInvalidStatus(t *testing.T) {
	f := newExecutionFixture(t)

	_, err := f.svc.RecordExecution(context.Background(), f.tester, RecordExecutionInput{
		TestCaseID: f.openCase.ID, Status: "Maybe",
	})
	if !apperr.IsCode(err, apperr.CodeInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestRecordExecutionWithoutPermission(t *testing.T) {
	f := newExecutionFixture(t)

	_, err := f.svc.RecordExecution(context.Background(), f.unGranted, RecordExecutionInput{
		TestCaseID: f.openCase.ID, Status: domain.ExecutionFail,
	})
	if !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if ae := apperr.From(err); ae.Reason != "no_permission" {
		t.Fatalf("expected reason no_permission, got %q", ae.Reason)
	}
	if len(f.execs.executions) != 0 {
		t.Fatalf("denied attempt must not record an execution")
	}
}

func TestRecordExecutionPassClosesCase(t *testing.T) {
	f := newExecutionFixture(t)

	result, err := f.svc.RecordExecution(context.Background(), f.tester, RecordExecutionInput{
		TestCaseID: f.openCase.ID, Status: domain.ExecutionPass, ActualResult: "as expected",
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !result.TestCaseClosed {
		t.Fatalf("expected testCaseClosed flag")
	}
	if f.openCase.Status != domain.TestCaseClosed {
		t.Fatalf("expected case closed, got %q", f.openCase.Status)
	}
	if !f.cache.deleted(AnalyticsCacheKey) {
		t.Fatalf("expected analytics cache invalidation")
	}
}

func TestRecordExecutionFailLeavesCaseOpen(t *testing.T) {
	f := newExecutionFixture(t)

	result, err := f.svc.RecordExecution(context.Background(), f.tester, RecordExecutionInput{
		TestCaseID: f.openCase.ID, Status: domain.ExecutionFail,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if result.TestCaseClosed {
		t.Fatalf("fail must not close the case")
	}
	if f.openCase.Status != domain.TestCaseOpen {
		t.Fatalf("expected case open, got %q", f.openCase.Status)
	}
}

func TestClosedCaseFreezesNonAdmins(t *testing.T) {
	f := newExecutionFixture(t)
	f.openCase.Status = domain.TestCaseClosed

	_, err := f.svc.RecordExecution(context.Background(), f.tester, RecordExecutionInput{
		TestCaseID: f.openCase.ID, Status: domain.ExecutionFail,
	})
	if !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if ae := apperr.From(err); ae.Reason != "closed" {
		t.Fatalf("expected reason closed, got %q", ae.Reason)
	}
}

func TestAdminBypassesClosedFreezeAndPermission(t *testing.T) {
	f := newExecutionFixture(t)
	f.openCase.Status = domain.TestCaseClosed

	// Admin holds no grant and the case is closed; both checks are bypassed.
	result, err := f.svc.RecordExecution(context.Background(), f.admin, RecordExecutionInput{
		TestCaseID: f.openCase.ID, Status: domain.ExecutionFail,
	})
	if err != nil {
		t.Fatalf("admin execution failed: %v", err)
	}
	if result.TestCaseClosed {
		t.Fatalf("fail must not re-close the case")
	}
}

func TestExecutionHistoryNewestFirst(t *testing.T) {
	f := newExecutionFixture(t)

	for _, status := range []string{domain.ExecutionFail, domain.ExecutionBlocked} {
		if _, err := f.svc.RecordExecution(context.Background(), f.tester, RecordExecutionInput{
			TestCaseID: f.openCase.ID, Status: status,
		}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	history, err := f.svc.History(f.openCase.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(history))
	}
	if history[0].Status != domain.ExecutionBlocked {
		t.Fatalf("expected newest first, got %q", history[0].Status)
	}
}

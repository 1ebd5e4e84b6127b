package service

import (
	"testing"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

func newCommentFixture(t *testing.T) (*CommentService, *domain.TestCase) {
	t.Helper()

	cases := newMemTestCaseRepo()
	tc := &domain.TestCase{ProjectID: 1, Title: "login works", Priority: "High", Type: "Functional"}
	if err := cases.CreateWithSteps(tc, nil); err != nil {
		t.Fatalf("seed test case: %v", err)
	}

	return NewCommentService(newMemCommentRepo(), cases, nil), tc
}

func TestCommentLifecycle(t *testing.T) {
	svc, tc := newCommentFixture(t)
	author := domain.Actor{ID: 2, Username: "tessa", Role: "tester"}

	comment, err := svc.Create(author, tc.ID, "flaky on staging")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if comment.Username != "tessa" {
		t.Fatalf("expected author username, got %q", comment.Username)
	}

	comments, err := svc.ListByTestCase(tc.ID)
	if err != nil || len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d (%v)", len(comments), err)
	}

	if err := svc.Delete(author, comment.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
}

func TestCommentValidation(t *testing.T) {
	svc, tc := newCommentFixture(t)
	author := domain.Actor{ID: 2, Role: "tester"}

	if _, err := svc.Create(author, tc.ID, ""); !apperr.IsCode(err, apperr.CodeInvalid) {
		t.Fatalf("expected invalid for empty content, got %v", err)
	}
	if _, err := svc.Create(author, 999, "orphan"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found for unknown test case, got %v", err)
	}
}

func TestCommentDeleteIsAuthorOrAdmin(t *testing.T) {
	svc, tc := newCommentFixture(t)
	author := domain.Actor{ID: 2, Username: "tessa", Role: "tester"}
	other := domain.Actor{ID: 3, Username: "oscar", Role: "test-lead"}
	admin := domain.Actor{ID: 1, Username: "root", Role: "admin"}

	comment, err := svc.Create(author, tc.ID, "note")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(other, comment.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-author, got %v", err)
	}
	if err := svc.Delete(admin, comment.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

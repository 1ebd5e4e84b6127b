package service

import (
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

// CommentService owns the discussion thread attached to a test case.
type CommentService struct {
	comments  domain.CommentRepository
	testCases domain.TestCaseRepository
	logger    *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(comments domain.CommentRepository, testCases domain.TestCaseRepository, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CommentService{
		comments:  comments,
		testCases: testCases,
		logger:    logger,
	}
}

// Create attaches a comment to an existing test case.
func (s *CommentService) Create(actor domain.Actor, testCaseID int64, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, apperr.Invalid("invalid comment", map[string]string{"content": "content is required"})
	}

	if _, err := s.testCases.GetByID(testCaseID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TestCaseID: testCaseID,
		UserID:     actor.ID,
		Username:   actor.Username,
		Content:    content,
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, apperr.Internal(err)
	}
	return comment, nil
}

// ListByTestCase returns a test case's comments, newest first.
func (s *CommentService) ListByTestCase(testCaseID int64) ([]*domain.Comment, error) {
	comments, err := s.comments.ListByTestCase(testCaseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return comments, nil
}

// Delete removes a comment. Only the author or an admin may delete.
func (s *CommentService) Delete(actor domain.Actor, id int64) error {
	comment, err := s.comments.GetByID(id)
	if err != nil {
		return err
	}

	if comment.UserID != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("You can only delete your own comments", "not_author")
	}

	return s.comments.Delete(id)
}

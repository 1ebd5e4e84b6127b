package domain

import "time"

// Comment is a remark attached to a test case.
type Comment struct {
	ID         int64     `json:"id"`
	TestCaseID int64     `json:"test_case_id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentRepository defines data access for comments
type CommentRepository interface {
	Create(comment *Comment) error
	GetByID(id int64) (*Comment, error)
	ListByTestCase(testCaseID int64) ([]*Comment, error)
	Delete(id int64) error
}

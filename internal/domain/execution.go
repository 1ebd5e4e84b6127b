package domain

import "time"

// Execution outcome statuses.
const (
	ExecutionPass    = "Pass"
	ExecutionFail    = "Fail"
	ExecutionBlocked = "Blocked"
	ExecutionSkipped = "Skipped"
	ExecutionPending = "Pending"
)

// ExecutionStatuses is the closed outcome enum.
var ExecutionStatuses = []string{ExecutionPass, ExecutionFail, ExecutionBlocked, ExecutionSkipped, ExecutionPending}

// TestExecution is one timestamped attempt to run a test case. Rows are
// append-only: the API never updates or deletes them.
type TestExecution struct {
	ID             int64     `json:"id"`
	TestCaseID     int64     `json:"test_case_id"`
	ExecutedBy     int64     `json:"executed_by"`
	ExecutedByName string    `json:"executed_by_name,omitempty"`
	Status         string    `json:"status"`
	ActualResult   string    `json:"actual_result"`
	Comments       string    `json:"comments"`
	ExecutionDate  time.Time `json:"execution_date"`
}

// ExecutionRepository defines data access for execution records.
type ExecutionRepository interface {
	// Record inserts the execution and, when closeCase is set, flips the test
	// case to closed in the same transaction.
	Record(exec *TestExecution, closeCase bool) error
	ListByTestCase(testCaseID int64) ([]*TestExecution, error)
}

// PermissionGrant is one execution-permission row joined with user detail for
// admin listings.
type PermissionGrant struct {
	UserID            int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	GrantedAt         time.Time `json:"granted_at"`
	GrantedByUsername string    `json:"granted_by_username"`
}

// PermissionRepository defines data access for execution permissions. The
// presence of a row means the user may execute tests; admins bypass the check.
type PermissionRepository interface {
	Has(userID int64) (bool, error)
	Grant(userID, grantedBy int64) error
	Revoke(userID int64) (bool, error)
	List() ([]*PermissionGrant, error)
}

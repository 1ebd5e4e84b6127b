package domain

import "time"

// Test case lifecycle states. A Pass execution closes a case; only an admin
// reopen sets it back to open.
const (
	TestCaseOpen   = "open"
	TestCaseClosed = "closed"
)

// TestCasePriorities is the closed priority enum.
var TestCasePriorities = []string{"Low", "Medium", "High", "Critical"}

// TestCaseTypes is the closed type enum.
var TestCaseTypes = []string{"Functional", "Integration", "Regression", "Smoke", "UI", "API"}

// TestCase is a reusable specified check belonging to a project.
type TestCase struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	SuiteID        *int64    `json:"suite_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       string    `json:"priority"`
	Type           string    `json:"type"`
	PreConditions  string    `json:"pre_conditions"`
	PostConditions string    `json:"post_conditions"`
	AssignedTo     *int64    `json:"assigned_to"`
	Status         string    `json:"status"`
	IsDeleted      bool      `json:"-"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TestStep is one ordered step of a test case. step_number is caller-supplied
// and stored verbatim; duplicates and gaps are accepted.
type TestStep struct {
	ID             int64  `json:"id"`
	TestCaseID     int64  `json:"test_case_id"`
	StepNumber     int    `json:"step_number"`
	Action         string `json:"action"`
	ExpectedResult string `json:"expected_result"`
}

// TestCaseFilter narrows listing queries.
type TestCaseFilter struct {
	ProjectID *int64
	SuiteID   *int64
}

// TestCaseRepository defines data access for test cases and their steps.
// CreateWithSteps and Update run in a single transaction: any failure rolls
// back the case row and all step rows together.
type TestCaseRepository interface {
	CreateWithSteps(tc *TestCase, steps []TestStep) error
	// Update replaces the whole row. When replaceSteps is true all existing
	// steps are discarded and the supplied list inserted in the same
	// transaction; when false steps are left untouched.
	Update(tc *TestCase, steps []TestStep, replaceSteps bool) error
	GetByID(id int64) (*TestCase, error)
	GetSteps(testCaseID int64) ([]TestStep, error)
	List(filter TestCaseFilter) ([]*TestCase, error)
	ListPassed(projectID int64) ([]*TestCase, error)
	SetStatus(id int64, status string) (*TestCase, error)
}

package domain

import "time"

// Project statuses form a closed enum.
const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project groups test suites and test cases.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Status      string    `json:"status"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectUpdate carries a partial update; nil fields keep the stored value.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Version     *string
	Status      *string
}

// ProjectRepository defines data access for projects and their membership
type ProjectRepository interface {
	Create(project *Project) error
	GetByID(id int64) (*Project, error)
	List() ([]*Project, error)
	ListAssignedTo(userID int64) ([]*Project, error)
	Update(id int64, upd *ProjectUpdate) (*Project, error)
	Delete(id int64) error
	AddMember(projectID, userID int64, role string) error
}

// TestSuite is a named grouping of test cases within a project.
type TestSuite struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// SuiteRepository defines data access for test suites
type SuiteRepository interface {
	Create(suite *TestSuite) error
	ListByProject(projectID int64) ([]*TestSuite, error)
}

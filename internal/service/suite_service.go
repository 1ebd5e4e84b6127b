package service

import (
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

// SuiteService owns test-suite grouping within projects.
type SuiteService struct {
	suites   domain.SuiteRepository
	projects domain.ProjectRepository
	logger   *slog.Logger
}

// NewSuiteService creates a new suite service
func NewSuiteService(suites domain.SuiteRepository, projects domain.ProjectRepository, logger *slog.Logger) *SuiteService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SuiteService{
		suites:   suites,
		projects: projects,
		logger:   logger,
	}
}

// SuiteInput is the create payload.
type SuiteInput struct {
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create inserts a suite under an existing project.
func (s *SuiteService) Create(actor domain.Actor, input SuiteInput) (*domain.TestSuite, error) {
	fields := map[string]string{}
	if input.ProjectID == 0 {
		fields["project_id"] = "project_id is required"
	}
	if input.Name == "" {
		fields["name"] = "name is required"
	}
	if len(fields) > 0 {
		return nil, apperr.Invalid("invalid test suite", fields)
	}

	if _, err := s.projects.GetByID(input.ProjectID); err != nil {
		return nil, err
	}

	suite := &domain.TestSuite{
		ProjectID:   input.ProjectID,
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   actor.ID,
	}
	if err := s.suites.Create(suite); err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger.Info("test suite created",
		slog.Int64("suite_id", suite.ID),
		slog.Int64("project_id", suite.ProjectID),
	)
	return suite, nil
}

// ListByProject returns a project's suites.
func (s *SuiteService) ListByProject(projectID int64) ([]*domain.TestSuite, error) {
	suites, err := s.suites.ListByProject(projectID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return suites, nil
}

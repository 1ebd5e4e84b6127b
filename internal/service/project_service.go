package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/observability/metrics"
	"github.com/yourorg/testtrack/internal/security/audit"
)

// ProjectService owns project CRUD and role-dependent visibility. The admin
// all-projects listing is served read-through from the cache; scoped listings
// for other roles always hit the store.
type ProjectService struct {
	projects domain.ProjectRepository
	cache    domain.Cache
	cacheTTL time.Duration
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projects domain.ProjectRepository,
	cache domain.Cache,
	cacheTTL time.Duration,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProjectService{
		projects: projects,
		cache:    cache,
		cacheTTL: cacheTTL,
		audit:    auditLog,
		logger:   logger,
	}
}

// ProjectInput is the create payload.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ProjectUpdateInput is a partial update; absent fields keep stored values.
type ProjectUpdateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
	Status      *string `json:"status"`
}

// Create inserts a project, enrolls the creator as its lead member, and
// invalidates the cached listing.
func (s *ProjectService) Create(ctx context.Context, actor domain.Actor, input ProjectInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, apperr.Invalid("invalid project", map[string]string{"name": "name is required"})
	}

	project := &domain.Project{
		Name:        input.Name,
		Description: input.Description,
		Version:     input.Version,
		Status:      domain.ProjectStatusActive,
		CreatedBy:   actor.ID,
	}

	if err := s.projects.Create(project); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.projects.AddMember(project.ID, actor.ID, "lead"); err != nil {
		s.logger.Warn("failed to enroll project creator as member",
			slog.Int64("project_id", project.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateListings(ctx)

	s.logger.Info("project created",
		slog.Int64("project_id", project.ID),
		slog.Int64("created_by", actor.ID),
	)

	return project, nil
}

// Get returns one project.
func (s *ProjectService) Get(id int64) (*domain.Project, error) {
	return s.projects.GetByID(id)
}

// List returns projects visible to the actor. Admins see every project via
// the cached listing; everyone else sees only projects containing test cases
// assigned to them, straight from the store.
func (s *ProjectService) List(ctx context.Context, actor domain.Actor) ([]*domain.Project, error) {
	if !actor.IsAdmin() {
		projects, err := s.projects.ListAssignedTo(actor.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return projects, nil
	}

	if cached, err := s.cache.Get(ctx, ProjectsCacheKey); err == nil {
		var projects []*domain.Project
		uerr := json.Unmarshal([]byte(cached), &projects)
		if uerr == nil {
			metrics.ObserveCacheHit(ProjectsCacheKey)
			return projects, nil
		}
		s.logger.Warn("discarding undecodable projects cache entry", slog.String("error", uerr.Error()))
	}
	metrics.ObserveCacheMiss(ProjectsCacheKey)

	projects, err := s.projects.List()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if payload, err := json.Marshal(projects); err == nil {
		if err := s.cache.Set(ctx, ProjectsCacheKey, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache projects listing", slog.String("error", err.Error()))
		}
	}

	return projects, nil
}

// Update applies a partial update and invalidates the cached listing. Name is
// required on every update; the other fields keep their stored values when
// absent.
func (s *ProjectService) Update(ctx context.Context, id int64, input ProjectUpdateInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, apperr.Invalid("invalid project", map[string]string{"name": "name is required"})
	}
	if input.Status != nil &&
		*input.Status != domain.ProjectStatusActive &&
		*input.Status != domain.ProjectStatusArchived {
		return nil, apperr.Invalid("invalid project", map[string]string{"status": "status must be active or archived"})
	}

	project, err := s.projects.Update(id, &domain.ProjectUpdate{
		Name:        &input.Name,
		Description: input.Description,
		Version:     input.Version,
		Status:      input.Status,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return project, nil
}

// Delete removes a project and everything under it. Hard delete: suites,
// test cases, steps, executions, and comments go with it via cascade.
func (s *ProjectService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.projects.Delete(id); err != nil {
		return err
	}

	s.invalidateListings(ctx)
	s.audit.LogProjectDelete(ctx, actor.ID, id)

	s.logger.Info("project deleted",
		slog.Int64("project_id", id),
		slog.Int64("deleted_by", actor.ID),
	)
	return nil
}

// invalidateListings drops both derived keys: any project mutation can change
// the listing and the dashboard counts.
func (s *ProjectService) invalidateListings(ctx context.Context) {
	if err := s.cache.Delete(ctx, ProjectsCacheKey, AnalyticsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate project caches", slog.String("error", err.Error()))
		return
	}
	metrics.ObserveCacheInvalidate(ProjectsCacheKey)
	metrics.ObserveCacheInvalidate(AnalyticsCacheKey)
}

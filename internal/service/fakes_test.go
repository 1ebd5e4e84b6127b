package service

import (
	"context"
	"time"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
)

// In-memory fakes shared by the service tests.

type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(id int64) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memUserRepo) GetByUsername(username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memUserRepo) List() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

type memTestCaseRepo struct {
	nextID int64
	cases  map[int64]*domain.TestCase
	steps  map[int64][]domain.TestStep
}

func newMemTestCaseRepo() *memTestCaseRepo {
	return &memTestCaseRepo{
		cases: map[int64]*domain.TestCase{},
		steps: map[int64][]domain.TestStep{},
	}
}

func (m *memTestCaseRepo) CreateWithSteps(tc *domain.TestCase, steps []domain.TestStep) error {
	m.nextID++
	tc.ID = m.nextID
	tc.Status = domain.TestCaseOpen
	tc.CreatedAt = time.Now()
	tc.UpdatedAt = tc.CreatedAt
	m.cases[tc.ID] = tc
	for i := range steps {
		steps[i].TestCaseID = tc.ID
		steps[i].ID = int64(i + 1)
	}
	m.steps[tc.ID] = steps
	return nil
}

func (m *memTestCaseRepo) Update(tc *domain.TestCase, steps []domain.TestStep, replaceSteps bool) error {
	existing, ok := m.cases[tc.ID]
	if !ok || existing.IsDeleted {
		return apperr.NotFound("test case not found")
	}
	tc.Status = existing.Status
	tc.CreatedBy = existing.CreatedBy
	tc.CreatedAt = existing.CreatedAt
	tc.UpdatedAt = time.Now()
	m.cases[tc.ID] = tc
	if replaceSteps {
		for i := range steps {
			steps[i].TestCaseID = tc.ID
			steps[i].ID = int64(i + 1)
		}
		m.steps[tc.ID] = steps
	}
	return nil
}

func (m *memTestCaseRepo) GetByID(id int64) (*domain.TestCase, error) {
	tc, ok := m.cases[id]
	if !ok || tc.IsDeleted {
		return nil, apperr.NotFound("test case not found")
	}
	return tc, nil
}

func (m *memTestCaseRepo) GetSteps(testCaseID int64) ([]domain.TestStep, error) {
	return m.steps[testCaseID], nil
}

func (m *memTestCaseRepo) List(filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	out := []*domain.TestCase{}
	for _, tc := range m.cases {
		if tc.IsDeleted {
			continue
		}
		if filter.ProjectID != nil && tc.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.SuiteID != nil && (tc.SuiteID == nil || *tc.SuiteID != *filter.SuiteID) {
			continue
		}
		out = append(out, tc)
	}
	return out, nil
}

func (m *memTestCaseRepo) ListPassed(projectID int64) ([]*domain.TestCase, error) {
	out := []*domain.TestCase{}
	for _, tc := range m.cases {
		if !tc.IsDeleted && tc.ProjectID == projectID && tc.Status == domain.TestCaseClosed {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (m *memTestCaseRepo) SetStatus(id int64, status string) (*domain.TestCase, error) {
	tc, ok := m.cases[id]
	if !ok {
		return nil, apperr.NotFound("test case not found")
	}
	tc.Status = status
	tc.UpdatedAt = time.Now()
	return tc, nil
}

type memExecutionRepo struct {
	nextID     int64
	executions []*domain.TestExecution
	cases      *memTestCaseRepo
}

func newMemExecutionRepo(cases *memTestCaseRepo) *memExecutionRepo {
	return &memExecutionRepo{cases: cases}
}

func (m *memExecutionRepo) Record(exec *domain.TestExecution, closeCase bool) error {
	m.nextID++
	exec.ID = m.nextID
	exec.ExecutionDate = time.Now()
	m.executions = append(m.executions, exec)
	if closeCase {
		if tc, ok := m.cases.cases[exec.TestCaseID]; ok {
			tc.Status = domain.TestCaseClosed
		}
	}
	return nil
}

func (m *memExecutionRepo) ListByTestCase(testCaseID int64) ([]*domain.TestExecution, error) {
	out := []*domain.TestExecution{}
	for i := len(m.executions) - 1; i >= 0; i-- {
		if m.executions[i].TestCaseID == testCaseID {
			out = append(out, m.executions[i])
		}
	}
	return out, nil
}

type memPermissionRepo struct {
	grants map[int64]int64 // userID -> grantedBy
}

func newMemPermissionRepo() *memPermissionRepo {
	return &memPermissionRepo{grants: map[int64]int64{}}
}

func (m *memPermissionRepo) Has(userID int64) (bool, error) {
	_, ok := m.grants[userID]
	return ok, nil
}

func (m *memPermissionRepo) Grant(userID, grantedBy int64) error {
	m.grants[userID] = grantedBy
	return nil
}

func (m *memPermissionRepo) Revoke(userID int64) (bool, error) {
	if _, ok := m.grants[userID]; !ok {
		return false, nil
	}
	delete(m.grants, userID)
	return true, nil
}

func (m *memPermissionRepo) List() ([]*domain.PermissionGrant, error) {
	out := []*domain.PermissionGrant{}
	for userID := range m.grants {
		out = append(out, &domain.PermissionGrant{UserID: userID})
	}
	return out, nil
}

type memProjectRepo struct {
	nextID   int64
	projects map[int64]*domain.Project
	members  map[int64][]int64 // projectID -> userIDs
	assigned map[int64][]int64 // userID -> projectIDs with cases assigned to them
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects: map[int64]*domain.Project{},
		members:  map[int64][]int64{},
		assigned: map[int64][]int64{},
	}
}

func (m *memProjectRepo) Create(p *domain.Project) error {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.projects[p.ID] = p
	return nil
}

func (m *memProjectRepo) GetByID(id int64) (*domain.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("project not found")
}

func (m *memProjectRepo) List() ([]*domain.Project, error) {
	out := []*domain.Project{}
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProjectRepo) ListAssignedTo(userID int64) ([]*domain.Project, error) {
	out := []*domain.Project{}
	for _, id := range m.assigned[userID] {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjectRepo) Update(id int64, upd *domain.ProjectUpdate) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Version != nil {
		p.Version = *upd.Version
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (m *memProjectRepo) Delete(id int64) error {
	if _, ok := m.projects[id]; !ok {
		return apperr.NotFound("project not found")
	}
	delete(m.projects, id)
	return nil
}

func (m *memProjectRepo) AddMember(projectID, userID int64, role string) error {
	m.members[projectID] = append(m.members[projectID], userID)
	return nil
}

type memCommentRepo struct {
	nextID   int64
	comments map[int64]*domain.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: map[int64]*domain.Comment{}}
}

func (m *memCommentRepo) Create(c *domain.Comment) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.comments[c.ID] = c
	return nil
}

func (m *memCommentRepo) GetByID(id int64) (*domain.Comment, error) {
	if c, ok := m.comments[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("comment not found")
}

func (m *memCommentRepo) ListByTestCase(testCaseID int64) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range m.comments {
		if c.TestCaseID == testCaseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommentRepo) Delete(id int64) error {
	if _, ok := m.comments[id]; !ok {
		return apperr.NotFound("comment not found")
	}
	delete(m.comments, id)
	return nil
}

// memCache implements domain.Cache in memory, ignoring TTLs.
type memCache struct {
	data    map[string]string
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}}
}

func (m *memCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", domain.ErrCacheMiss
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
		m.deletes = append(m.deletes, key)
	}
	return nil
}

func (m *memCache) deleted(key string) bool {
	for _, k := range m.deletes {
		if k == key {
			return true
		}
	}
	return false
}

// fakeNotifier records assignment sends synchronously.
type fakeNotifier struct {
	sent chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan string, 8)}
}

func (f *fakeNotifier) SendAssignment(to, testCaseTitle, assignerName string, testCaseID, projectID int64) error {
	f.sent <- to
	return nil
}

// fakeAnalyticsRepo returns a canned snapshot and counts invocations.
type fakeAnalyticsRepo struct {
	snapshots int
	dash      *domain.Dashboard
}

func (f *fakeAnalyticsRepo) Snapshot() (*domain.Dashboard, error) {
	f.snapshots++
	if f.dash != nil {
		return f.dash, nil
	}
	return &domain.Dashboard{
		Counts:             domain.DashboardCounts{Projects: 1, TestCases: 2, Users: 3},
		ExecutionStats:     []domain.StatusCount{{Status: domain.ExecutionPass, Count: 2}},
		PriorityStats:      []domain.PriorityCount{{Priority: "High", Count: 1}},
		ExecutionsOverTime: []domain.DailyCount{},
	}, nil
}

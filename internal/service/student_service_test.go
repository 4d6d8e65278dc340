package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
	listTotal  int
	err        error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]models.Student)}
}

func (m *mockStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.students[id]
	return ok, nil
}

func (m *mockStudentRepo) Create(_ context.Context, student *models.Student) error {
	if m.err != nil {
		return m.err
	}
	student.ID = uuid.NewString()
	student.CreatedAt = time.Now().UTC()
	student.UpdatedAt = student.CreatedAt
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Gender:      "female",
		DateOfBirth: time.Date(2012, 12, 10, 0, 0, 0, 0, time.UTC),
		Section:     models.SectionPrimary,
		Class:       "5A",
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newMockStudentRepo()
	cache, cacheRepo := newTestCache()
	svc := NewStudentService(repo, cache, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "Ada Lovelace", student.FullName())
	assert.Contains(t, repo.students, student.ID)
	assert.Equal(t, []string{"stats:*", "analytics:*"}, cacheRepo.invalidated)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil, nil)

	req := validStudentRequest()
	req.Section = "college"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Equal(t, []appErrors.FieldError{{Field: "section", Rule: "section"}}, appErrors.FromError(err).Details)
	assert.Empty(t, repo.students)

	req = validStudentRequest()
	req.FirstName = ""
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestStudentServiceUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil, nil)
	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	class := "6B"
	updated, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{Class: &class})
	require.NoError(t, err)
	assert.Equal(t, "6B", updated.Class)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, models.SectionPrimary, updated.Section)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil, nil)
	name := "Grace"
	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateStudentRequest{FirstName: &name})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil, nil)
	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.NotContains(t, repo.students, created.ID)

	err = svc.Delete(context.Background(), created.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestStudentServiceListPagination(t *testing.T) {
	repo := newMockStudentRepo()
	repo.listTotal = 42
	svc := NewStudentService(repo, nil, nil, nil)

	_, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 2, PageSize: 10, Search: "ada"})
	require.NoError(t, err)
	assert.Equal(t, &models.Pagination{Page: 2, PageSize: 10, TotalCount: 42}, pagination)
	assert.Equal(t, "ada", repo.lastFilter.Search)

	_, pagination, err = svc.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 42, pagination.PageSize)
}

func TestStudentServiceListFailure(t *testing.T) {
	repo := newMockStudentRepo()
	repo.err = assert.AnError
	svc := NewStudentService(repo, nil, nil, nil)

	_, _, err := svc.List(context.Background(), models.StudentFilter{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "failed to list students", appErr.Message)
}

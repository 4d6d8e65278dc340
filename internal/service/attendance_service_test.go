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

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records   map[string]models.Attendance
	created   []models.Attendance
	createErr error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]models.Attendance)}
}

func (m *mockAttendanceRepo) List(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	out := make([]models.AttendanceRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, models.AttendanceRecord{Attendance: r})
	}
	return out, len(out), nil
}

func (m *mockAttendanceRepo) FindByID(_ context.Context, id string) (*models.Attendance, error) {
	if r, ok := m.records[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *models.Attendance) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = uuid.NewString()
	m.records[a.ID] = *a
	m.created = append(m.created, *a)
	return nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, a *models.Attendance) error {
	m.records[a.ID] = *a
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func TestAttendanceServiceCreateRequiresStudent(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, stubStudentChecker{}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.AttendanceEntry{
		StudentID: uuid.NewString(),
		Date:      time.Now(),
		Status:    models.AttendanceStatusPresent,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "student does not exist", appErr.Message)
	assert.Empty(t, repo.created)
}

func TestAttendanceServiceCreateAllowsDuplicates(t *testing.T) {
	studentID := uuid.NewString()
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, stubStudentChecker{studentID: true}, nil, nil, nil, nil)

	entry := dto.AttendanceEntry{StudentID: studentID, Date: time.Now(), Status: models.AttendanceStatusLate}
	_, err := svc.Create(context.Background(), entry)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), entry)
	require.NoError(t, err)
	assert.Len(t, repo.created, 2)
}

func TestAttendanceServiceCreateBatchPartialFailure(t *testing.T) {
	known := uuid.NewString()
	other := uuid.NewString()
	repo := newMockAttendanceRepo()
	cache, cacheRepo := newTestCache()
	svc := NewAttendanceService(repo, stubStudentChecker{known: true, other: true}, cache, NewMetricsService(), nil, nil)

	now := time.Now()
	result, err := svc.CreateBatch(context.Background(), dto.AttendanceBatchRequest{Entries: []dto.AttendanceEntry{
		{StudentID: known, Date: now, Status: models.AttendanceStatusPresent},
		{StudentID: uuid.NewString(), Date: now, Status: models.AttendanceStatusAbsent},
		{StudentID: other, Date: now, Status: "sick"},
		{StudentID: other, Date: now, Status: models.AttendanceStatusLate, Note: "bus"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)

	require.Len(t, result.Items, 4)
	assert.NotNil(t, result.Items[0].Record)
	assert.Equal(t, "student does not exist", result.Items[1].Error)
	assert.Equal(t, "invalid attendance payload", result.Items[2].Error)
	assert.Equal(t, 3, result.Items[3].Index)
	assert.Equal(t, "bus", result.Items[3].Record.Note)
	assert.Len(t, repo.created, 2)
	assert.NotEmpty(t, cacheRepo.invalidated)
}

func TestAttendanceServiceCreateBatchAllFailedKeepsCache(t *testing.T) {
	repo := newMockAttendanceRepo()
	cache, cacheRepo := newTestCache()
	svc := NewAttendanceService(repo, stubStudentChecker{}, cache, nil, nil, nil)

	result, err := svc.CreateBatch(context.Background(), dto.AttendanceBatchRequest{Entries: []dto.AttendanceEntry{
		{StudentID: uuid.NewString(), Date: time.Now(), Status: models.AttendanceStatusPresent},
	}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, cacheRepo.invalidated)
}

func TestAttendanceServiceCreateBatchEmpty(t *testing.T) {
	svc := NewAttendanceService(newMockAttendanceRepo(), stubStudentChecker{}, nil, nil, nil, nil)

	_, err := svc.CreateBatch(context.Background(), dto.AttendanceBatchRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "please mark attendance for at least one student", appErr.Message)
}

func TestAttendanceServiceCreateBatchCancelled(t *testing.T) {
	studentID := uuid.NewString()
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, stubStudentChecker{studentID: true}, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := svc.CreateBatch(ctx, dto.AttendanceBatchRequest{Entries: []dto.AttendanceEntry{
		{StudentID: studentID, Date: time.Now(), Status: models.AttendanceStatusPresent},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, context.Canceled.Error(), result.Items[0].Error)
	assert.Empty(t, repo.created)
}

func TestAttendanceServiceUpdateStatus(t *testing.T) {
	repo := newMockAttendanceRepo()
	repo.records["a1"] = models.Attendance{ID: "a1", Status: models.AttendanceStatusAbsent, Note: "flu"}
	svc := NewAttendanceService(repo, stubStudentChecker{}, nil, nil, nil, nil)

	status := models.AttendanceStatusLate
	updated, err := svc.Update(context.Background(), "a1", dto.AttendancePatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusLate, updated.Status)
	assert.Equal(t, "flu", updated.Note)

	invalid := models.AttendanceStatus("holiday")
	_, err = svc.Update(context.Background(), "a1", dto.AttendancePatch{Status: &invalid})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Update(context.Background(), "missing", dto.AttendancePatch{Status: &status})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestAttendanceServiceListRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(newMockAttendanceRepo(), stubStudentChecker{}, nil, nil, nil, nil)
	_, _, err := svc.List(context.Background(), models.AttendanceFilter{Status: "holiday"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type mockExamRepo struct {
	exams  map[string]models.Exam
	graded map[string][]string
}

func (m *mockExamRepo) GradedSubjects(_ context.Context, id string) ([]string, error) {
	return m.graded[id], nil
}

func (m *mockExamRepo) List(_ context.Context, _ models.ExamFilter) ([]models.Exam, error) {
	out := make([]models.Exam, 0, len(m.exams))
	for _, e := range m.exams {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockExamRepo) FindByID(_ context.Context, id string) (*models.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) Create(_ context.Context, e *models.Exam) error {
	e.ID = uuid.NewString()
	m.exams[e.ID] = *e
	return nil
}

func (m *mockExamRepo) Update(_ context.Context, e *models.Exam) error {
	m.exams[e.ID] = *e
	return nil
}

func (m *mockExamRepo) Delete(_ context.Context, id string) error {
	delete(m.exams, id)
	return nil
}

type mockResultRepo struct {
	results map[string]models.Result
}

func (m *mockResultRepo) List(_ context.Context, _ models.ResultFilter) ([]models.ResultRecord, error) {
	return nil, nil
}

func (m *mockResultRepo) FindByID(_ context.Context, id string) (*models.Result, error) {
	if r, ok := m.results[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) Create(_ context.Context, r *models.Result) error {
	r.ID = uuid.NewString()
	m.results[r.ID] = *r
	return nil
}

func (m *mockResultRepo) Update(_ context.Context, r *models.Result) error {
	m.results[r.ID] = *r
	return nil
}

func (m *mockResultRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.results[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.results, id)
	return nil
}

func newResultFixture(t *testing.T) (*ResultService, *mockResultRepo, string, string) {
	t.Helper()
	examID := uuid.NewString()
	studentID := uuid.NewString()
	exams := &mockExamRepo{exams: map[string]models.Exam{
		examID: {ID: examID, Name: "Midterm", Subjects: []string{"Math", "Science"}},
	}}
	results := &mockResultRepo{results: make(map[string]models.Result)}
	svc := NewResultService(results, exams, stubStudentChecker{studentID: true}, nil, nil, nil)
	return svc, results, examID, studentID
}

func TestResultServiceDerivesGrade(t *testing.T) {
	svc, _, examID, studentID := newResultFixture(t)

	result, err := svc.Create(context.Background(), CreateResultRequest{ExamID: examID, StudentID: studentID, Subject: "Math", Score: 84.5})
	require.NoError(t, err)
	assert.Equal(t, models.GradeB, result.Grade)

	score := 91.0
	updated, err := svc.Update(context.Background(), result.ID, UpdateResultRequest{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, updated.Grade)
}

func TestResultServiceRejectsUnknownSubject(t *testing.T) {
	svc, results, examID, studentID := newResultFixture(t)

	_, err := svc.Create(context.Background(), CreateResultRequest{ExamID: examID, StudentID: studentID, Subject: "History", Score: 70})
	require.Error(t, err)
	assert.Equal(t, "subject is not part of the exam", appErrors.FromError(err).Message)
	assert.Empty(t, results.results)
}

func TestResultServiceRejectsMissingReferences(t *testing.T) {
	svc, _, examID, studentID := newResultFixture(t)

	_, err := svc.Create(context.Background(), CreateResultRequest{ExamID: uuid.NewString(), StudentID: studentID, Subject: "Math", Score: 70})
	assert.Equal(t, "exam does not exist", appErrors.FromError(err).Message)

	_, err = svc.Create(context.Background(), CreateResultRequest{ExamID: examID, StudentID: uuid.NewString(), Subject: "Math", Score: 70})
	assert.Equal(t, "student does not exist", appErrors.FromError(err).Message)
}

func TestResultServiceRejectsScoreOutOfRange(t *testing.T) {
	svc, _, examID, studentID := newResultFixture(t)
	_, err := svc.Create(context.Background(), CreateResultRequest{ExamID: examID, StudentID: studentID, Subject: "Math", Score: 101})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestExamServiceNormalisesSubjects(t *testing.T) {
	repo := &mockExamRepo{exams: make(map[string]models.Exam)}
	svc := NewExamService(repo, nil, nil, nil)
	req := CreateExamRequest{
		Name:     "Final",
		Section:  models.SectionHighSchool,
		Class:    "12",
		Date:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Subjects: []string{" Math ", "Physics"},
	}

	exam, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "Physics"}, []string(exam.Subjects))

	req.Subjects = []string{"Math", "Math"}
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	req.Subjects = nil
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

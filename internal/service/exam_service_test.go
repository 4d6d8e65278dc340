package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

func TestExamServiceCreateTrimsSubjects(t *testing.T) {
	repo := &mockExamRepo{exams: make(map[string]models.Exam)}
	svc := NewExamService(repo, nil, nil, nil)

	exam, err := svc.Create(context.Background(), CreateExamRequest{
		Name:     "Midterm",
		Section:  models.SectionPrimary,
		Class:    "4B",
		Date:     time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		Subjects: []string{" Math ", "Science"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "Science"}, []string(exam.Subjects))
	assert.Contains(t, repo.exams, exam.ID)
}

func TestExamServiceRejectsDuplicateSubjects(t *testing.T) {
	svc := NewExamService(&mockExamRepo{exams: make(map[string]models.Exam)}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateExamRequest{
		Name:     "Final",
		Section:  models.SectionHighSchool,
		Class:    "12A",
		Date:     time.Now(),
		Subjects: []string{"Math", "Math "},
	})
	require.Error(t, err)
	assert.Equal(t, "duplicate subject Math", appErrors.FromError(err).Message)

	_, err = svc.Create(context.Background(), CreateExamRequest{Name: "Final", Section: models.SectionHighSchool, Class: "12A", Date: time.Now()})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestExamServiceUpdate(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]models.Exam{
		"x1": {ID: "x1", Name: "Quiz", Section: models.SectionSecondary, Class: "8C", Subjects: []string{"History"}},
	}}
	svc := NewExamService(repo, nil, nil, nil)

	subjects := []string{"History", "Geography"}
	exam, err := svc.Update(context.Background(), "x1", UpdateExamRequest{Subjects: &subjects})
	require.NoError(t, err)
	assert.Equal(t, "Quiz", exam.Name)
	assert.Equal(t, subjects, []string(repo.exams["x1"].Subjects))

	_, err = svc.Update(context.Background(), "nope", UpdateExamRequest{})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestExamServiceUpdateKeepsGradedSubjects(t *testing.T) {
	repo := &mockExamRepo{
		exams:  map[string]models.Exam{"x1": {ID: "x1", Name: "Final", Section: models.SectionPrimary, Class: "5A", Subjects: []string{"Math", "Art"}}},
		graded: map[string][]string{"x1": {"Math"}},
	}
	svc := NewExamService(repo, nil, nil, nil)

	withoutMath := []string{"Art"}
	_, err := svc.Update(context.Background(), "x1", UpdateExamRequest{Subjects: &withoutMath})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))
	assert.Equal(t, "subject Math has results and cannot be removed", appErrors.FromError(err).Message)
	assert.Equal(t, []string{"Math", "Art"}, []string(repo.exams["x1"].Subjects))

	withoutArt := []string{"Math", "Music"}
	exam, err := svc.Update(context.Background(), "x1", UpdateExamRequest{Subjects: &withoutArt})
	require.NoError(t, err)
	assert.Equal(t, withoutArt, []string(exam.Subjects))
}

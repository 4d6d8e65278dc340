package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error
	GradedSubjects(ctx context.Context, id string) ([]string, error)
}

// CreateExamRequest holds payload for scheduling an exam.
type CreateExamRequest struct {
	Name     string         `json:"name" validate:"required,max=150"`
	Section  models.Section `json:"section" validate:"required,section"`
	Class    string         `json:"class" validate:"required,max=50"`
	Date     time.Time      `json:"date" validate:"required"`
	Subjects []string       `json:"subjects" validate:"required,min=1,dive,required,max=100"`
}

// UpdateExamRequest holds a partial update.
type UpdateExamRequest struct {
	Name     *string         `json:"name" validate:"omitempty,min=1,max=150"`
	Section  *models.Section `json:"section" validate:"omitempty,section"`
	Class    *string         `json:"class" validate:"omitempty,min=1,max=50"`
	Date     *time.Time      `json:"date"`
	Subjects *[]string       `json:"subjects" validate:"omitempty,min=1,dive,required,max=100"`
}

// ExamService manages exams.
type ExamService struct {
	repo      examRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns exams.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	exams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list exams")
	}
	return exams, nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	return exam, nil
}

// Create schedules an exam.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	subjects, err := normaliseSubjects(req.Subjects)
	if err != nil {
		return nil, err
	}
	exam := &models.Exam{
		Name:     req.Name,
		Section:  req.Section,
		Class:    req.Class,
		Date:     req.Date,
		Subjects: subjects,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, internalError(err, "failed to create exam")
	}
	s.cache.InvalidateAggregates(ctx)
	return exam, nil
}

// Update applies a partial update.
func (s *ExamService) Update(ctx context.Context, id string, req UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	if req.Name != nil {
		exam.Name = *req.Name
	}
	if req.Section != nil {
		exam.Section = *req.Section
	}
	if req.Class != nil {
		exam.Class = *req.Class
	}
	if req.Date != nil {
		exam.Date = *req.Date
	}
	if req.Subjects != nil {
		subjects, err := normaliseSubjects(*req.Subjects)
		if err != nil {
			return nil, err
		}
		if err := s.ensureGradedSubjectsKept(ctx, id, subjects); err != nil {
			return nil, err
		}
		exam.Subjects = subjects
	}
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, internalError(err, "failed to update exam")
	}
	s.cache.InvalidateAggregates(ctx)
	return exam, nil
}

// Delete removes an exam and its results.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "exam not found", "failed to delete exam")
	}
	s.cache.InvalidateAggregates(ctx)
	return nil
}

// ensureGradedSubjectsKept refuses to drop a subject that results already refer to.
func (s *ExamService) ensureGradedSubjectsKept(ctx context.Context, id string, subjects []string) error {
	graded, err := s.repo.GradedSubjects(ctx, id)
	if err != nil {
		return internalError(err, "failed to load exam results")
	}
	kept := models.Exam{Subjects: subjects}
	for _, subject := range graded {
		if !kept.HasSubject(subject) {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("subject %s has results and cannot be removed", subject))
		}
	}
	return nil
}

// normaliseSubjects trims names and rejects duplicates.
func normaliseSubjects(subjects []string) ([]string, error) {
	seen := make(map[string]struct{}, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject names must not be blank")
		}
		if _, dup := seen[subject]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate subject "+subject)
		}
		seen[subject] = struct{}{}
		out = append(out, subject)
	}
	return out, nil
}

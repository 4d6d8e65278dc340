package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type resultRepository interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, error)
	FindByID(ctx context.Context, id string) (*models.Result, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id string) error
}

type examLookup interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

// CreateResultRequest holds payload for recording a score. The grade is always derived.
type CreateResultRequest struct {
	ExamID    string  `json:"examId" validate:"required,uuid"`
	StudentID string  `json:"studentId" validate:"required,uuid"`
	Subject   string  `json:"subject" validate:"required,max=100"`
	Score     float64 `json:"score" validate:"gte=0,lte=100"`
}

// UpdateResultRequest holds a partial update.
type UpdateResultRequest struct {
	Subject *string  `json:"subject" validate:"omitempty,min=1,max=100"`
	Score   *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// ResultService manages exam results.
type ResultService struct {
	repo      resultRepository
	exams     examLookup
	students  existenceChecker
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService constructs the result service.
func NewResultService(repo resultRepository, exams examLookup, students existenceChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, exams: exams, students: students, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns results.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, error) {
	results, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list results")
	}
	return results, nil
}

// Create records a score for a student in one subject of an exam.
func (s *ResultService) Create(ctx context.Context, req CreateResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid result payload")
	}
	exam, err := s.loadExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}
	if !exam.HasSubject(req.Subject) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is not part of the exam")
	}
	if err := requireStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}
	result := &models.Result{
		ExamID:    req.ExamID,
		StudentID: req.StudentID,
		Subject:   req.Subject,
		Score:     req.Score,
		Grade:     models.GradeFor(req.Score),
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, writeError(err, "exam or student does not exist", "failed to create result")
	}
	s.cache.InvalidateAggregates(ctx)
	return result, nil
}

// Update changes subject and/or score and recomputes the grade.
func (s *ResultService) Update(ctx context.Context, id string, req UpdateResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid result payload")
	}
	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "result not found", "failed to load result")
	}
	if req.Subject != nil && *req.Subject != result.Subject {
		exam, err := s.loadExam(ctx, result.ExamID)
		if err != nil {
			return nil, err
		}
		if !exam.HasSubject(*req.Subject) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject is not part of the exam")
		}
		result.Subject = *req.Subject
	}
	if req.Score != nil {
		result.Score = *req.Score
	}
	result.Grade = models.GradeFor(result.Score)
	if err := s.repo.Update(ctx, result); err != nil {
		return nil, internalError(err, "failed to update result")
	}
	s.cache.InvalidateAggregates(ctx)
	return result, nil
}

// Delete removes a result.
func (s *ResultService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "result not found", "failed to delete result")
	}
	s.cache.InvalidateAggregates(ctx)
	return nil
}

func (s *ResultService) loadExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "exam does not exist")
		}
		return nil, internalError(err, "failed to load exam")
	}
	return exam, nil
}

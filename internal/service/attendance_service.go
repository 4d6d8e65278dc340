package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const maxAttendanceBatch = 500

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, attendance *models.Attendance) error
	Update(ctx context.Context, attendance *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// AttendanceService coordinates attendance workflows.
type AttendanceService struct {
	repo      attendanceRepository
	students  existenceChecker
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students existenceChecker, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		students:  students,
		cache:     cache,
		metrics:   metrics,
		validator: ensureValidator(validate),
		logger:    logger,
	}
}

// List returns attendance rows matching the filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status filter")
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list attendance")
	}
	return records, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Create records one attendance mark. Several marks for the same student and day are kept as separate rows.
func (s *AttendanceService) Create(ctx context.Context, req dto.AttendanceEntry) (*models.Attendance, error) {
	record, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAggregates(ctx)
	return record, nil
}

// CreateBatch records every entry independently and reports each outcome.
// Invalid entries and entries for missing students fail alone while the rest are stored.
func (s *AttendanceService) CreateBatch(ctx context.Context, req dto.AttendanceBatchRequest) (*models.AttendanceBatchResult, error) {
	if len(req.Entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "please mark attendance for at least one student")
	}
	if len(req.Entries) > maxAttendanceBatch {
		return nil, appErrors.Clone(appErrors.ErrValidation, "too many attendance entries in one batch")
	}

	result := &models.AttendanceBatchResult{Items: make([]models.AttendanceBatchItemResult, 0, len(req.Entries))}
	for i, entry := range req.Entries {
		item := models.AttendanceBatchItemResult{Index: i, StudentID: entry.StudentID}
		if err := ctx.Err(); err != nil {
			item.Error = err.Error()
		} else if record, err := s.create(ctx, entry); err != nil {
			item.Error = appErrors.FromError(err).Message
		} else {
			item.Record = record
		}
		if item.Error == "" {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Items = append(result.Items, item)
	}
	result.Processed = len(result.Items)

	if result.Succeeded > 0 {
		s.cache.InvalidateAggregates(ctx)
	}
	s.metrics.ObserveAttendanceBatch(result.Succeeded, result.Failed)
	s.logger.Info("attendance batch processed",
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// Update changes the status and/or note of an attendance row.
func (s *AttendanceService) Update(ctx context.Context, id string, req dto.AttendancePatch) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "attendance not found", "failed to load attendance")
	}
	if req.Status != nil {
		record.Status = *req.Status
	}
	if req.Note != nil {
		record.Note = *req.Note
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, internalError(err, "failed to update attendance")
	}
	s.cache.InvalidateAggregates(ctx)
	return record, nil
}

// Delete removes an attendance row.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "attendance not found", "failed to delete attendance")
	}
	s.cache.InvalidateAggregates(ctx)
	return nil
}

func (s *AttendanceService) create(ctx context.Context, req dto.AttendanceEntry) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	if err := requireStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}
	record := &models.Attendance{
		StudentID: req.StudentID,
		Date:      req.Date.UTC(),
		Status:    req.Status,
		Note:      req.Note,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, writeError(err, "student does not exist", "failed to create attendance")
	}
	return record, nil
}

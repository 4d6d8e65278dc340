package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FirstName     string         `json:"firstName" validate:"required,max=100"`
	LastName      string         `json:"lastName" validate:"required,max=100"`
	Gender        string         `json:"gender" validate:"required,oneof=male female"`
	DateOfBirth   time.Time      `json:"dateOfBirth" validate:"required"`
	Address       string         `json:"address" validate:"max=255"`
	GuardianName  string         `json:"guardianName" validate:"max=150"`
	GuardianPhone string         `json:"guardianPhone" validate:"max=30"`
	GuardianEmail string         `json:"guardianEmail" validate:"omitempty,email"`
	Section       models.Section `json:"section" validate:"required,section"`
	Class         string         `json:"class" validate:"required,max=50"`
}

// UpdateStudentRequest holds a partial update. Nil fields are left unchanged.
type UpdateStudentRequest struct {
	FirstName     *string         `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName      *string         `json:"lastName" validate:"omitempty,min=1,max=100"`
	Gender        *string         `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth   *time.Time      `json:"dateOfBirth"`
	Address       *string         `json:"address" validate:"omitempty,max=255"`
	GuardianName  *string         `json:"guardianName" validate:"omitempty,max=150"`
	GuardianPhone *string         `json:"guardianPhone" validate:"omitempty,max=30"`
	GuardianEmail *string         `json:"guardianEmail" validate:"omitempty,email"`
	Section       *models.Section `json:"section" validate:"omitempty,section"`
	Class         *string         `json:"class" validate:"omitempty,min=1,max=50"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns students and pagination metadata. A zero page size returns every match.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student := &models.Student{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Gender:        req.Gender,
		DateOfBirth:   req.DateOfBirth,
		Address:       req.Address,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		GuardianEmail: req.GuardianEmail,
		Section:       req.Section,
		Class:         req.Class,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, internalError(err, "failed to create student")
	}
	s.cache.InvalidateAggregates(ctx)
	s.logger.Debug("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update applies a partial update to an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = *req.DateOfBirth
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.GuardianName != nil {
		student.GuardianName = *req.GuardianName
	}
	if req.GuardianPhone != nil {
		student.GuardianPhone = *req.GuardianPhone
	}
	if req.GuardianEmail != nil {
		student.GuardianEmail = *req.GuardianEmail
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.Class != nil {
		student.Class = *req.Class
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, internalError(err, "failed to update student")
	}
	s.cache.InvalidateAggregates(ctx)
	return student, nil
}

// Delete hard deletes a student together with attendance, payments and results.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "student not found", "failed to delete student")
	}
	s.cache.InvalidateAggregates(ctx)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// Exists reports whether the student is stored; used by services that reference students.
func (s *StudentService) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = total
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

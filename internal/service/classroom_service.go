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

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error)
	FindByID(ctx context.Context, id string) (*models.ClassroomDetail, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id string) error
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// CreateClassroomRequest holds payload for creating classrooms.
type CreateClassroomRequest struct {
	Name      string         `json:"name" validate:"required,max=100"`
	Section   models.Section `json:"section" validate:"required,section"`
	Capacity  int            `json:"capacity" validate:"required,gt=0"`
	TeacherID *string        `json:"teacherId" validate:"omitempty,uuid"`
}

// UpdateClassroomRequest holds a partial update. An empty teacherId unassigns the teacher.
type UpdateClassroomRequest struct {
	Name      *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Section   *models.Section `json:"section" validate:"omitempty,section"`
	Capacity  *int            `json:"capacity" validate:"omitempty,gt=0"`
	TeacherID *string         `json:"teacherId" validate:"omitempty,uuid|len=0"`
}

// ClassroomService manages classrooms and their homeroom teacher.
type ClassroomService struct {
	repo      classroomRepository
	teachers  teacherLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs the classroom service.
func NewClassroomService(repo classroomRepository, teachers teacherLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, teachers: teachers, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns classrooms.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error) {
	classrooms, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list classrooms")
	}
	return classrooms, nil
}

// Get returns one classroom.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.ClassroomDetail, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "classroom not found", "failed to load classroom")
	}
	return classroom, nil
}

// Create registers a classroom.
func (s *ClassroomService) Create(ctx context.Context, req CreateClassroomRequest) (*models.ClassroomDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom payload")
	}
	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	classroom := &models.Classroom{
		Name:      req.Name,
		Section:   req.Section,
		Capacity:  req.Capacity,
		TeacherID: req.TeacherID,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, writeError(err, "teacher does not exist", "failed to create classroom")
	}
	s.cache.InvalidateAggregates(ctx)
	return s.Get(ctx, classroom.ID)
}

// Update applies a partial update.
func (s *ClassroomService) Update(ctx context.Context, id string, req UpdateClassroomRequest) (*models.ClassroomDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "classroom not found", "failed to load classroom")
	}
	classroom := detail.Classroom
	if req.Name != nil {
		classroom.Name = *req.Name
	}
	if req.Section != nil {
		classroom.Section = *req.Section
	}
	if req.Capacity != nil {
		classroom.Capacity = *req.Capacity
	}
	if req.TeacherID != nil {
		if *req.TeacherID == "" {
			classroom.TeacherID = nil
		} else {
			if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
				return nil, err
			}
			classroom.TeacherID = req.TeacherID
		}
	}
	if err := s.repo.Update(ctx, &classroom); err != nil {
		return nil, writeError(err, "teacher does not exist", "failed to update classroom")
	}
	s.cache.InvalidateAggregates(ctx)
	return s.Get(ctx, id)
}

// Delete removes a classroom.
func (s *ClassroomService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "classroom not found", "failed to delete classroom")
	}
	s.cache.InvalidateAggregates(ctx)
	return nil
}

func (s *ClassroomService) ensureTeacher(ctx context.Context, teacherID *string) error {
	if teacherID == nil || *teacherID == "" {
		return nil
	}
	employee, err := s.teachers.FindByID(ctx, *teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return internalError(err, "failed to verify teacher")
	}
	if employee.Role != models.EmployeeRoleTeacher {
		return appErrors.Clone(appErrors.ErrValidation, "assigned employee is not a teacher")
	}
	return nil
}

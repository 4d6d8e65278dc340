package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
	CountClassrooms(ctx context.Context, id string) (int, error)
}

// CreateEmployeeRequest holds payload for creating employees.
type CreateEmployeeRequest struct {
	FirstName string              `json:"firstName" validate:"required,max=100"`
	LastName  string              `json:"lastName" validate:"required,max=100"`
	Email     string              `json:"email" validate:"omitempty,email"`
	Phone     string              `json:"phone" validate:"max=30"`
	Role      models.EmployeeRole `json:"role" validate:"required,employee_role"`
	Section   *models.Section     `json:"section" validate:"omitempty,section"`
	Shift     *models.Shift       `json:"shift" validate:"omitempty,shift"`
	Subjects  []string            `json:"subjects" validate:"omitempty,dive,required,max=100"`
	HireDate  *time.Time          `json:"hireDate"`
}

// UpdateEmployeeRequest holds a partial update.
type UpdateEmployeeRequest struct {
	FirstName *string              `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string              `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email     *string              `json:"email" validate:"omitempty,email"`
	Phone     *string              `json:"phone" validate:"omitempty,max=30"`
	Role      *models.EmployeeRole `json:"role" validate:"omitempty,employee_role"`
	Section   *models.Section      `json:"section" validate:"omitempty,section"`
	Shift     *models.Shift        `json:"shift" validate:"omitempty,shift"`
	Subjects  *[]string            `json:"subjects" validate:"omitempty,dive,required,max=100"`
	HireDate  *time.Time           `json:"hireDate"`
}

// EmployeeService manages staff records.
type EmployeeService struct {
	repo      employeeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns employees filtered by role, section or name.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list employees")
	}
	return employees, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "employee not found", "failed to load employee")
	}
	return employee, nil
}

// Create registers an employee.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid employee payload")
	}
	employee := &models.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Section:   req.Section,
		Shift:     req.Shift,
		Subjects:  req.Subjects,
		HireDate:  req.HireDate,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, internalError(err, "failed to create employee")
	}
	s.cache.InvalidateAggregates(ctx)
	return employee, nil
}

// Update applies a partial update.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid employee payload")
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "employee not found", "failed to load employee")
	}
	if req.FirstName != nil {
		employee.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		employee.LastName = *req.LastName
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}
	if req.Role != nil {
		if employee.Role == models.EmployeeRoleTeacher && *req.Role != models.EmployeeRoleTeacher {
			assigned, err := s.repo.CountClassrooms(ctx, id)
			if err != nil {
				return nil, internalError(err, "failed to check classroom assignments")
			}
			if assigned > 0 {
				return nil, appErrors.Clone(appErrors.ErrConflict, "employee is the teacher of a classroom; reassign it before changing the role")
			}
		}
		employee.Role = *req.Role
	}
	if req.Section != nil {
		employee.Section = req.Section
	}
	if req.Shift != nil {
		employee.Shift = req.Shift
	}
	if req.Subjects != nil {
		employee.Subjects = *req.Subjects
	}
	if req.HireDate != nil {
		employee.HireDate = req.HireDate
	}
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, internalError(err, "failed to update employee")
	}
	s.cache.InvalidateAggregates(ctx)
	return employee, nil
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "employee not found", "failed to delete employee")
	}
	s.cache.InvalidateAggregates(ctx)
	return nil
}

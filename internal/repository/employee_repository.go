package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const employeeColumns = `id, first_name, last_name, email, phone, role, section, shift, subjects, hire_date, created_at, updated_at`

// EmployeeRepository manages persistence for employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns employees matching the filter.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("FROM employees WHERE %s", strings.Join(conditions, " AND "))
	allowedSorts := map[string]string{
		"first_name": "first_name",
		"last_name":  "last_name",
		"role":       "role",
		"hire_date":  "hire_date",
		"created_at": "created_at",
	}
	query := fmt.Sprintf("SELECT %s %s", employeeColumns, base) +
		orderClause(allowedSorts, filter.SortBy, filter.SortOrder, "created_at") +
		limitClause(filter.Page, filter.PageSize)

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// FindByID fetches one employee.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	if employee.Subjects == nil {
		employee.Subjects = []string{}
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	const query = `INSERT INTO employees (id, first_name, last_name, email, phone, role, section, shift, subjects, hire_date, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :phone, :role, :section, :shift, :subjects, :hire_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	if employee.Subjects == nil {
		employee.Subjects = []string{}
	}
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, role = :role,
        section = :section, shift = :shift, subjects = :subjects, hire_date = :hire_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// CountClassrooms counts the classrooms that name the employee as their teacher.
func (r *EmployeeRepository) CountClassrooms(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classrooms WHERE teacher_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count classrooms of employee: %w", err)
	}
	return count, nil
}

// Delete removes an employee. Classrooms they taught keep existing without a teacher.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "employees", id)
}

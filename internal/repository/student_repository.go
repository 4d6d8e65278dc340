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

const studentColumns = `id, first_name, last_name, gender, date_of_birth, address, guardian_name, guardian_phone, guardian_email, section, class, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters together with the unpaginated total.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(first_name || ' ' || last_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("FROM students WHERE %s", strings.Join(conditions, " AND "))
	allowedSorts := map[string]string{
		"first_name": "first_name",
		"last_name":  "last_name",
		"class":      "class",
		"created_at": "created_at",
	}
	query := fmt.Sprintf("SELECT %s %s", studentColumns, base) +
		orderClause(allowedSorts, filter.SortBy, filter.SortOrder, "created_at") +
		limitClause(filter.Page, filter.PageSize)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Exists reports whether a student with the id is stored.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, "students", id)
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, first_name, last_name, gender, date_of_birth, address, guardian_name, guardian_phone, guardian_email, section, class, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :gender, :date_of_birth, :address, :guardian_name, :guardian_phone, :guardian_email, :section, :class, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, gender = :gender, date_of_birth = :date_of_birth, address = :address,
        guardian_name = :guardian_name, guardian_phone = :guardian_phone, guardian_email = :guardian_email, section = :section, class = :class, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student; attendance, payments and results cascade.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "students", id)
}

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

const classroomSelect = `SELECT c.id, c.name, c.section, c.capacity, c.teacher_id, c.created_at, c.updated_at,
        CASE WHEN e.id IS NULL THEN NULL ELSE e.first_name || ' ' || e.last_name END AS teacher_name
        FROM classrooms c LEFT JOIN employees e ON e.id = c.teacher_id`

// ClassroomRepository manages persistence for classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// List returns classrooms with their teacher names.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("c.section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY c.section, c.name", classroomSelect, strings.Join(conditions, " AND "))

	var classrooms []models.ClassroomDetail
	if err := r.db.SelectContext(ctx, &classrooms, query, args...); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return classrooms, nil
}

// FindByID fetches a classroom with its teacher name.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.ClassroomDetail, error) {
	var classroom models.ClassroomDetail
	if err := r.db.GetContext(ctx, &classroom, classroomSelect+" WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// Create inserts a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = now
	}
	classroom.UpdatedAt = now
	const query = `INSERT INTO classrooms (id, name, section, capacity, teacher_id, created_at, updated_at)
        VALUES (:id, :name, :section, :capacity, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a classroom.
func (r *ClassroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	classroom.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classrooms SET name = :name, section = :section, capacity = :capacity, teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// Delete removes a classroom.
func (r *ClassroomRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "classrooms", id)
}

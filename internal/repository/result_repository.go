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

const resultSelect = `SELECT r.id, r.exam_id, r.student_id, r.subject, r.score, r.grade, r.created_at, r.updated_at,
        x.name AS exam_name, s.first_name || ' ' || s.last_name AS student_name
        FROM results r JOIN exams x ON x.id = r.exam_id JOIN students s ON s.id = r.student_id`

// ResultRepository persists exam results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// List returns results joined with exam and student names.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.ExamID != "" {
		conditions = append(conditions, fmt.Sprintf("r.exam_id = $%d", len(args)+1))
		args = append(args, filter.ExamID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("r.subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY x.date DESC, r.subject", resultSelect, strings.Join(conditions, " AND "))

	var results []models.ResultRecord
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// FindByID fetches one result row.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.Result, error) {
	const query = `SELECT id, exam_id, student_id, subject, score, grade, created_at, updated_at FROM results WHERE id = $1`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// Create inserts a result.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	const query = `INSERT INTO results (id, exam_id, student_id, subject, score, grade, created_at, updated_at)
        VALUES (:id, :exam_id, :student_id, :subject, :score, :grade, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// Update overwrites subject, score and grade of a result.
func (r *ResultRepository) Update(ctx context.Context, result *models.Result) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE results SET subject = :subject, score = :score, grade = :grade, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return nil
}

// Delete removes a result.
func (r *ResultRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "results", id)
}

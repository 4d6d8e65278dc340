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

const examColumns = `id, name, section, class, date, subjects, created_at, updated_at`

// ExamRepository persists exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams ordered by date, newest first.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
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
	query := fmt.Sprintf("SELECT %s FROM exams WHERE %s ORDER BY date DESC", examColumns, strings.Join(conditions, " AND "))

	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// FindByID fetches an exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, fmt.Sprintf("SELECT %s FROM exams WHERE id = $1", examColumns), id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create inserts an exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	const query = `INSERT INTO exams (id, name, section, class, date, subjects, created_at, updated_at)
        VALUES (:id, :name, :section, :class, :date, :subjects, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an exam.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET name = :name, section = :section, class = :class, date = :date, subjects = :subjects, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// GradedSubjects lists the distinct subjects that already have results for the exam.
func (r *ExamRepository) GradedSubjects(ctx context.Context, id string) ([]string, error) {
	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, `SELECT DISTINCT subject FROM results WHERE exam_id = $1 ORDER BY subject`, id); err != nil {
		return nil, fmt.Errorf("graded subjects of exam: %w", err)
	}
	return subjects, nil
}

// Delete removes an exam and, by cascade, its results.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "exams", id)
}

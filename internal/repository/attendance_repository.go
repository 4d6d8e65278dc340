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

const attendanceSelect = `SELECT a.id, a.student_id, a.date, a.status, a.note, a.created_at, a.updated_at,
        s.first_name || ' ' || s.last_name AS student_name, s.section, s.class
        FROM attendance a JOIN students s ON s.id = a.student_id`

// AttendanceRepository persists attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows joined with student placement.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("s.section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("s.class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date < $%d", len(args)+1))
		args = append(args, models.RangeEnd(*filter.DateTo))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	query := attendanceSelect + where +
		orderClause(map[string]string{"date": "a.date"}, "date", filter.SortOrder, "a.date") +
		limitClause(filter.Page, filter.PageSize)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM attendance a JOIN students s ON s.id = a.student_id" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// FindByID fetches one attendance row.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	const query = `SELECT id, student_id, date, status, note, created_at, updated_at FROM attendance WHERE id = $1`
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, id); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// Create inserts one attendance row. Repeated rows for the same student and day are accepted.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = now
	}
	attendance.UpdatedAt = now
	const query = `INSERT INTO attendance (id, student_id, date, status, note, created_at, updated_at)
        VALUES (:id, :student_id, :date, :status, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Update stores the status and note of an attendance row.
func (r *AttendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	attendance.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance SET status = :status, note = :note, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes an attendance row.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "attendance", id)
}

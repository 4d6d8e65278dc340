package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// AnalyticsRepository exposes read-optimised queries for the analytics endpoint.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// AttendanceBySection counts attendance statuses per student section.
func (r *AnalyticsRepository) AttendanceBySection(ctx context.Context, filter models.AnalyticsFilter) ([]models.SectionAttendance, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT s.section,
        SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END) AS present,
        SUM(CASE WHEN a.status = 'absent' THEN 1 ELSE 0 END) AS absent,
        SUM(CASE WHEN a.status = 'late' THEN 1 ELSE 0 END) AS late
        FROM attendance a JOIN students s ON s.id = a.student_id
        WHERE 1=1`)
	var args []interface{}
	if filter.Section != "" {
		args = append(args, filter.Section)
		builder.WriteString(fmt.Sprintf(" AND s.section = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND a.date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, models.RangeEnd(*filter.DateTo))
		builder.WriteString(fmt.Sprintf(" AND a.date < $%d", len(args)))
	}
	builder.WriteString(" GROUP BY s.section ORDER BY s.section")

	var rows []models.SectionAttendance
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("attendance by section: %w", err)
	}
	return rows, nil
}

// PaymentsByMonth totals payment amounts per calendar month starting at since.
func (r *AnalyticsRepository) PaymentsByMonth(ctx context.Context, since time.Time) ([]models.MonthlyPayments, error) {
	const query = `SELECT to_char(date_trunc('month', payment_date), 'YYYY-MM') AS month,
        COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count
        FROM payments WHERE payment_date >= $1
        GROUP BY 1 ORDER BY 1`
	var rows []models.MonthlyPayments
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("payments by month: %w", err)
	}
	return rows, nil
}

// SubjectAverages computes the mean score per subject, optionally scoped to a section and exam date range.
func (r *AnalyticsRepository) SubjectAverages(ctx context.Context, filter models.AnalyticsFilter) ([]models.SubjectAverage, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT r.subject, AVG(r.score) AS average, COUNT(*) AS count
        FROM results r JOIN exams x ON x.id = r.exam_id WHERE 1=1`)
	args := examScope(&builder, filter)
	builder.WriteString(" GROUP BY r.subject ORDER BY r.subject")

	var rows []models.SubjectAverage
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("subject averages: %w", err)
	}
	return rows, nil
}

// GradeDistribution counts results per letter grade.
func (r *AnalyticsRepository) GradeDistribution(ctx context.Context, filter models.AnalyticsFilter) ([]models.GroupCount, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT r.grade AS key, COUNT(*) AS count
        FROM results r JOIN exams x ON x.id = r.exam_id WHERE 1=1`)
	args := examScope(&builder, filter)
	builder.WriteString(" GROUP BY r.grade")

	var rows []models.GroupCount
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("grade distribution: %w", err)
	}
	return rows, nil
}

func examScope(builder *strings.Builder, filter models.AnalyticsFilter) []interface{} {
	var args []interface{}
	if filter.Section != "" {
		args = append(args, filter.Section)
		builder.WriteString(fmt.Sprintf(" AND x.section = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND x.date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, models.RangeEnd(*filter.DateTo))
		builder.WriteString(fmt.Sprintf(" AND x.date < $%d", len(args)))
	}
	return args
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// Totals holds headline entity counts.
type Totals struct {
	Students   int `db:"students"`
	Employees  int `db:"employees"`
	Classrooms int `db:"classrooms"`
}

// StatsRepository runs the aggregate queries behind the dashboard statistics.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals counts students, employees and classrooms in one round trip.
func (r *StatsRepository) Totals(ctx context.Context) (Totals, error) {
	const query = `SELECT (SELECT COUNT(*) FROM students) AS students,
        (SELECT COUNT(*) FROM employees) AS employees,
        (SELECT COUNT(*) FROM classrooms) AS classrooms`
	var totals Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return Totals{}, fmt.Errorf("count totals: %w", err)
	}
	return totals, nil
}

// StudentsBySection groups student counts by section.
func (r *StatsRepository) StudentsBySection(ctx context.Context) ([]models.GroupCount, error) {
	return r.groupCount(ctx, "students by section", `SELECT section AS key, COUNT(*) AS count FROM students GROUP BY section`)
}

// EmployeesByRole groups employee counts by role.
func (r *StatsRepository) EmployeesByRole(ctx context.Context) ([]models.GroupCount, error) {
	return r.groupCount(ctx, "employees by role", `SELECT role AS key, COUNT(*) AS count FROM employees GROUP BY role`)
}

// AttendanceByStatus groups attendance rows dated within [from, to) by status.
func (r *StatsRepository) AttendanceByStatus(ctx context.Context, from, to time.Time) ([]models.GroupCount, error) {
	return r.groupCount(ctx, "attendance by status",
		`SELECT status AS key, COUNT(*) AS count FROM attendance WHERE date >= $1 AND date < $2 GROUP BY status`, from, to)
}

// PaymentsByStatus sums payment amounts by status.
func (r *StatsRepository) PaymentsByStatus(ctx context.Context) ([]models.GroupAmount, error) {
	const query = `SELECT status AS key, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count FROM payments GROUP BY status`
	var rows []models.GroupAmount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("payments by status: %w", err)
	}
	return rows, nil
}

func (r *StatsRepository) groupCount(ctx context.Context, label, query string, args ...interface{}) ([]models.GroupCount, error) {
	var rows []models.GroupCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return rows, nil
}

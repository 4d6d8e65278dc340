package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func TestStatsRepositoryTotals(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT (SELECT COUNT(*) FROM students) AS students")).
		WillReturnRows(sqlmock.NewRows([]string{"students", "employees", "classrooms"}).AddRow(120, 15, 6))

	totals, err := repo.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Totals{Students: 120, Employees: 15, Classrooms: 6}, totals)
}

func TestStatsRepositoryAttendanceByStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE date >= $1 AND date < $2 GROUP BY status")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("present", 40).AddRow("late", 2))

	rows, err := repo.AttendanceByStatus(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []models.GroupCount{{Key: "present", Count: 40}, {Key: "late", Count: 2}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryAttendanceBySectionFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND s.section = $1 AND a.date >= $2 GROUP BY s.section ORDER BY s.section")).
		WithArgs(models.SectionPrimary, from).
		WillReturnRows(sqlmock.NewRows([]string{"section", "present", "absent", "late"}).AddRow("primary", 8, 1, 1))

	rows, err := repo.AttendanceBySection(context.Background(), models.AnalyticsFilter{Section: models.SectionPrimary, DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].Present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryAttendanceBySectionDateTo(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	to := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.date < $1 GROUP BY s.section")).
		WithArgs(to.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"section", "present", "absent", "late"}).AddRow("secondary", 2, 0, 1))

	rows, err := repo.AttendanceBySection(context.Background(), models.AnalyticsFilter{DateTo: &to})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Late)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryGradeDistribution(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.grade AS key, COUNT(*) AS count")).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("A", 3).AddRow("F", 1))

	rows, err := repo.GradeDistribution(context.Background(), models.AnalyticsFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

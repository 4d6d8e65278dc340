package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func TestEmployeeRepositoryListByRole(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "role", "section", "shift", "subjects", "hire_date", "created_at", "updated_at"}).
		AddRow("e1", "Alan", "Turing", "alan@example.com", "555", "teacher", "secondary", nil, "{math,logic}", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE 1=1 AND role = $1 ORDER BY created_at DESC")).
		WithArgs(models.EmployeeRoleTeacher).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE 1=1 AND role = $1")).
		WithArgs(models.EmployeeRoleTeacher).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	employees, total, err := repo.List(context.Background(), models.EmployeeFilter{Role: models.EmployeeRoleTeacher})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, pq.StringArray{"math", "logic"}, employees[0].Subjects)
	require.NotNil(t, employees[0].Section)
	assert.Equal(t, models.SectionSecondary, *employees[0].Section)
	assert.Nil(t, employees[0].Shift)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreateDefaultsSubjects(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("INSERT INTO employees").WillReturnResult(sqlmock.NewResult(1, 1))

	employee := &models.Employee{FirstName: "Grace", LastName: "Hopper", Role: models.EmployeeRoleDriver}
	require.NoError(t, repo.Create(context.Background(), employee))
	assert.NotNil(t, employee.Subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms c LEFT JOIN employees e ON e.id = c.teacher_id WHERE c.id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "section", "capacity", "teacher_id", "created_at", "updated_at", "teacher_name"}).
			AddRow("c1", "Room 1", "primary", 30, "e1", now, now, "Alan Turing"))

	classroom, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 30, classroom.Capacity)
	require.NotNil(t, classroom.TeacherName)
	assert.Equal(t, "Alan Turing", *classroom.TeacherName)
}

func TestAttendanceRepositoryListByClassAndDate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND s.class = $1 AND a.date >= $2 ORDER BY a.date DESC")).
		WithArgs("3A", day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "date", "status", "note", "created_at", "updated_at", "student_name", "section", "class"}).
			AddRow("a1", "s1", day, "late", "bus", now, now, "Ada Lovelace", "primary", "3A"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance a JOIN students s ON s.id = a.student_id WHERE 1=1 AND s.class = $1 AND a.date >= $2")).
		WithArgs("3A", day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{Class: "3A", DateFrom: &day})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceStatusLate, records[0].Status)
	assert.Equal(t, "Ada Lovelace", records[0].StudentName)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCountClassrooms(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classrooms WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountClassrooms(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListDateToIncludesWholeDay(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.date >= $1 AND a.date < $2 ORDER BY a.date DESC")).
		WithArgs(day, next).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "date", "status", "note", "created_at", "updated_at", "student_name", "section", "class"}).
			AddRow("a1", "s1", day.Add(9*time.Hour+30*time.Minute), "present", "", day, day, "Ada Lovelace", "primary", "3A"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.date >= $1 AND a.date < $2")).
		WithArgs(day, next).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{DateFrom: &day, DateTo: &day})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreateAllowsSameDay(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))

	day := time.Now()
	first := &models.Attendance{StudentID: "s1", Date: day, Status: models.AttendanceStatusPresent}
	second := &models.Attendance{StudentID: "s1", Date: day, Status: models.AttendanceStatusAbsent}
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))
	assert.NotEqual(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND p.status = $1 ORDER BY p.payment_date DESC")).
		WithArgs(models.PaymentStatusUnpaid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "amount", "status", "description", "payment_date", "created_at", "updated_at", "student_name"}).
			AddRow("p1", "s1", 150.5, "unpaid", "Term fee", now, now, now, "Ada Lovelace"))

	payments, err := repo.List(context.Background(), models.PaymentFilter{Status: models.PaymentStatusUnpaid})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.InDelta(t, 150.5, payments[0].Amount, 0.001)
}

func TestExamRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + examColumns + " FROM exams WHERE id = $1")).
		WithArgs("x1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "section", "class", "date", "subjects", "created_at", "updated_at"}).
			AddRow("x1", "Midterm", "secondary", "8B", now, "{math,science}", now, now))

	exam, err := repo.FindByID(context.Background(), "x1")
	require.NoError(t, err)
	assert.True(t, exam.HasSubject("science"))
}

func TestExamRepositoryGradedSubjects(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT subject FROM results WHERE exam_id = $1")).
		WithArgs("x1").
		WillReturnRows(sqlmock.NewRows([]string{"subject"}).AddRow("math").AddRow("science"))

	subjects, err := repo.GradedSubjects(context.Background(), "x1")
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "science"}, subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE results SET subject = ?, score = ?, grade = ?, updated_at = ? WHERE id = ?")).
		WithArgs("math", 91.0, models.GradeA, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Result{ID: "r1", Subject: "math", Score: 91, Grade: models.GradeA})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

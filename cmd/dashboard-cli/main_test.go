package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/bulkattendance"
	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/client"
)

var testRoster = []models.Student{
	{ID: "s1", FirstName: "Ana", LastName: "Silva", Section: models.SectionPrimary, Class: "1A"},
	{ID: "s2", FirstName: "Bruno", LastName: "Costa", Section: models.SectionPrimary, Class: "1B"},
	{ID: "s3", FirstName: "Carla", LastName: "Souza", Section: models.SectionSecondary, Class: "1A"},
}

type fakeServer struct {
	mu       sync.Mutex
	created  []dto.AttendanceEntry
	deleted  []string
	statsHit int
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/students":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": testRoster})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/students/"):
		s.deleted = append(s.deleted, strings.TrimPrefix(r.URL.Path, "/students/"))
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/attendance":
		var entry dto.AttendanceEntry
		_ = json.NewDecoder(r.Body).Decode(&entry)
		s.created = append(s.created, entry)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": models.Attendance{ID: "a1", StudentID: entry.StudentID}})
	case r.Method == http.MethodGet && r.URL.Path == "/stats":
		s.statsHit++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": models.DashboardStats{
			TotalStudents:     3,
			StudentsBySection: map[models.Section]int{models.SectionPrimary: 2, models.SectionSecondary: 1},
		}})
	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": map[string]interface{}{"code": "NOT_FOUND", "message": "not found"}})
	}
}

func newTestCLI(t *testing.T, in string) (*cli, *fakeServer, *bytes.Buffer) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	return &cli{
		api:    client.New(srv.URL, client.WithToken("token")),
		cache:  client.NewQueryCache(),
		logger: zap.NewNop(),
		out:    out,
		in:     strings.NewReader(in),
	}, fake, out
}

func TestListStudentsFilters(t *testing.T) {
	app, _, out := newTestCLI(t, "")

	require.NoError(t, app.run(context.Background(), "students", []string{"--class", "1A", "--search", "sou"}))
	assert.Contains(t, out.String(), "s3\tCarla Souza")
	assert.NotContains(t, out.String(), "Ana Silva")
	assert.Contains(t, out.String(), "1 of 3 students")
}

func TestStatsPrintsTotals(t *testing.T) {
	app, fake, out := newTestCLI(t, "")

	require.NoError(t, app.run(context.Background(), "stats", nil))
	assert.Equal(t, 1, fake.statsHit)
	assert.Contains(t, out.String(), "students:   3")
}

func TestDeleteStudentConfirmation(t *testing.T) {
	app, fake, out := newTestCLI(t, "n\n")
	require.NoError(t, app.run(context.Background(), "delete-student", []string{"--id", "s1"}))
	assert.Contains(t, out.String(), "cancelled")
	assert.Empty(t, fake.deleted)

	app, fake, out = newTestCLI(t, "")
	require.NoError(t, app.run(context.Background(), "delete-student", []string{"--id", "s1", "--yes"}))
	assert.Equal(t, []string{"s1"}, fake.deleted)
	assert.Contains(t, out.String(), "student deleted")
}

func TestMarkAttendanceFiltersByClass(t *testing.T) {
	app, fake, out := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "marks.csv")
	require.NoError(t, os.WriteFile(path, []byte("studentId,status,note\ns1,present,\ns2,absent,\ns3,late,bus\n"), 0o600))

	require.NoError(t, app.run(context.Background(), "mark-attendance", []string{"--file", path, "--class", "1A"}))

	require.Len(t, fake.created, 2)
	assert.Equal(t, "s1", fake.created[0].StudentID)
	assert.Equal(t, "s3", fake.created[1].StudentID)
	assert.Equal(t, "bus", fake.created[1].Note)
	assert.Contains(t, out.String(), "Attendance recorded for 2 students")
}

func TestMarkAttendanceNothingToSubmit(t *testing.T) {
	app, fake, _ := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "marks.csv")
	require.NoError(t, os.WriteFile(path, []byte("studentId,status\ns2,present\n"), 0o600))

	err := app.run(context.Background(), "mark-attendance", []string{"--file", path, "--class", "3C"})
	assert.ErrorIs(t, err, bulkattendance.ErrNothingToSubmit)
	assert.Empty(t, fake.created)
}

func TestApplyMarksSkipsUnknownStudents(t *testing.T) {
	recorder := bulkattendance.NewRecorder(bulkattendance.SequentialStrategy{})
	skipped := applyMarks(recorder, testRoster[:1], []markRow{
		{StudentID: "s1", Status: models.AttendanceStatusLate, Note: "rain"},
		{StudentID: "x9", Status: models.AttendanceStatusPresent},
	})

	assert.Equal(t, []string{"x9"}, skipped)
	marks := recorder.Marks()
	require.Len(t, marks, 1)
	assert.Equal(t, "rain", marks[0].Note)
}

func TestUnknownCommand(t *testing.T) {
	app, _, _ := newTestCLI(t, "")
	assert.Error(t, app.run(context.Background(), "nope", nil))
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type fakeReportService struct {
	lastReq   dto.ReportRequest
	lastActor string
	createErr error
	path      string
}

func (f *fakeReportService) CreateJob(_ context.Context, req dto.ReportRequest, actorID string) (*dto.ReportJobResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastReq = req
	f.lastActor = actorID
	return &dto.ReportJobResponse{ID: "job-1", Status: models.ReportStatusQueued}, nil
}

func (f *fakeReportService) GetStatus(_ context.Context, id string) (*dto.ReportStatusResponse, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return &dto.ReportStatusResponse{ID: id, Status: models.ReportStatusRunning}, nil
}

func (f *fakeReportService) ResolveDownload(_ context.Context, token string) (*service.ReportDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	return &service.ReportDownload{File: file, Filename: filepath.Base(f.path), ContentType: "text/csv"}, nil
}

func TestReportHandlerCreateAccepted(t *testing.T) {
	svc := &fakeReportService{}
	h := NewReportHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Request = httptest.NewRequest(http.MethodPost, "/reports", jsonBody(t, map[string]string{"type": "students", "format": "csv"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "admin-1", svc.lastActor)
	assert.Equal(t, models.ReportTypeStudents, svc.lastReq.Type)
	assert.Contains(t, rec.Body.String(), "job-1")
}

func TestReportHandlerCreateDisabled(t *testing.T) {
	h := NewReportHandler(&fakeReportService{createErr: appErrors.Clone(appErrors.ErrNotConfigured, "report generation is disabled")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports", jsonBody(t, map[string]string{"type": "students", "format": "pdf"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReportHandlerStatus(t *testing.T) {
	h := NewReportHandler(&fakeReportService{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/nope", nil)
	h.Status(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students_job-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name\nAda Lovelace\n"), 0o600))
	h := NewReportHandler(&fakeReportService{path: path})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/download?token=good", nil)
	h.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students_job-1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name\nAda Lovelace\n", rec.Body.String())
}

func TestReportHandlerDownloadRejectsTokens(t *testing.T) {
	h := NewReportHandler(&fakeReportService{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/download", nil)
	h.Download(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/download?token=forged", nil)
	h.Download(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

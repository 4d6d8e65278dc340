package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
	"github.com/noah-isme/school-dashboard-api/pkg/storage"
)

// ReportJobKind is the jobs.Job kind used for report generation.
const ReportJobKind = "report"

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) (string, error)
}

type downloadSigner interface {
	Sign(reportID, file string) (string, time.Time, error)
	Verify(token string) (*storage.DownloadClaims, error)
}

type reportFiles interface {
	Open(path string) (*os.File, error)
	ContentType(format models.ReportFormat) string
}

// ReportServiceConfig governs download URLs and queue recovery.
type ReportServiceConfig struct {
	APIPrefix    string
	RecoverLimit int
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ReportService orchestrates report job lifecycle management.
type ReportService struct {
	repo      reportJobStore
	queue     jobDispatcher
	files     reportFiles
	signer    downloadSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, queue jobDispatcher, files reportFiles, signer downloadSigner, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RecoverLimit <= 0 {
		cfg.RecoverLimit = 50
	}
	return &ReportService{
		repo:      repo,
		queue:     queue,
		files:     files,
		signer:    signer,
		validator: ensureValidator(validate),
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, persists a queued job and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req dto.ReportRequest, actorID string) (*dto.ReportJobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrNotConfigured, "report generation is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid report request")
	}
	if req.DateFrom != nil && req.DateTo != nil && req.DateTo.Before(*req.DateFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dateTo must not be before dateFrom")
	}
	if req.Type == models.ReportTypeResults && req.ExamID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examId is required for results reports")
	}

	job := &models.ReportJob{
		Type:   req.Type,
		Format: req.Format,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{
			Section:  req.Section,
			Class:    req.Class,
			ExamID:   req.ExamID,
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
		},
	}
	if actorID != "" {
		job.CreatedBy = &actorID
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, internalError(err, "failed to create report job")
	}
	if _, err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: ReportJobKind}); err != nil {
		failed := models.ReportStatusFailed
		msg := "failed to enqueue job"
		if updateErr := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &failed, Error: &msg}); updateErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return nil, internalError(err, "failed to enqueue report job")
	}
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// GetStatus exposes job metadata. Finished jobs carry a freshly signed download URL.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "report job not found", "failed to load report job")
	}
	resp := &dto.ReportStatusResponse{
		ID:     job.ID,
		Type:   job.Type,
		Format: job.Format,
		Status: job.Status,
	}
	if job.Error != nil && *job.Error != "" {
		resp.Error = job.Error
	}
	if job.Status == models.ReportStatusFinished && job.ResultPath != nil {
		token, expiresAt, err := s.signer.Sign(job.ID, *job.ResultPath)
		if err != nil {
			return nil, internalError(err, "failed to sign download url")
		}
		link := fmt.Sprintf("%s/reports/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), url.QueryEscape(token))
		resp.DownloadURL = &link
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, claims.ReportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, internalError(err, "failed to load report job")
	}
	if job.Status != models.ReportStatusFinished || job.ResultPath == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	if *job.ResultPath != claims.File {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.files.Open(claims.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer exists")
		}
		return nil, internalError(err, "failed to open export file")
	}
	return &ReportDownload{
		File:        file,
		Filename:    filepath.Base(claims.File),
		ContentType: s.files.ContentType(job.Format),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a process restart.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) int {
	if s.queue == nil {
		return 0
	}
	pending, err := s.repo.ListQueued(ctx, s.cfg.RecoverLimit)
	if err != nil {
		s.logger.Warn("failed to recover queued report jobs", zap.Error(err))
		return 0
	}
	recovered := 0
	for _, job := range pending {
		if _, err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: ReportJobKind}); err != nil {
			s.logger.Warn("failed to requeue pending job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReportJob) (string, error)
}

// ReportWorker bridges queue jobs to ExportService.
type ReportWorker struct {
	repo     reportJobStore
	exporter exportGenerator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReportWorker constructs a worker.
func NewReportWorker(repo reportJobStore, exporter exportGenerator, metrics *MetricsService, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger}
}

// Handle processes a queue job. A returned error makes the queue retry it.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if record.Status == models.ReportStatusFinished {
		return nil
	}
	running := models.ReportStatusRunning
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &running}); err != nil {
		return err
	}
	path, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		queued := models.ReportStatusQueued
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &queued, Error: &msg}); updateErr != nil {
			w.logger.Warn("failed to mark job queued", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}
	finished := models.ReportStatusFinished
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:     &finished,
		ResultPath: &path,
		Error:      &noError,
	}); err != nil {
		return err
	}
	w.metrics.ObserveReportJob(record.Type, finished)
	w.logger.Info("report job finished", zap.String("job_id", job.ID), zap.String("type", string(record.Type)))
	return nil
}

// MarkFailed is the queue failure hook, invoked once retries are exhausted.
func (w *ReportWorker) MarkFailed(ctx context.Context, job jobs.Job, cause error) {
	failed := models.ReportStatusFailed
	msg := cause.Error()
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &failed, Error: &msg}); err != nil {
		w.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	var reportType models.ReportType
	if record, err := w.repo.GetByID(ctx, job.ID); err == nil {
		reportType = record.Type
	}
	w.metrics.ObserveReportJob(reportType, failed)
	w.logger.Error("report job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(cause))
}

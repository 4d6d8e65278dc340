package dto

import (
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// ReportRequest captures the POST /reports payload.
type ReportRequest struct {
	Type     models.ReportType   `json:"type" validate:"required,oneof=students attendance payments results"`
	Format   models.ReportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	Section  models.Section      `json:"section,omitempty" validate:"omitempty,section"`
	Class    string              `json:"class,omitempty"`
	ExamID   string              `json:"examId,omitempty" validate:"omitempty,uuid"`
	DateFrom *time.Time          `json:"dateFrom,omitempty"`
	DateTo   *time.Time          `json:"dateTo,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID          string              `json:"id"`
	Type        models.ReportType   `json:"type"`
	Format      models.ReportFormat `json:"format"`
	Status      models.ReportStatus `json:"status"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Error       *string             `json:"error,omitempty"`
}

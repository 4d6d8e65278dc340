package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType enumerates the datasets a report can export.
type ReportType string

const (
	ReportTypeStudents   ReportType = "students"
	ReportTypeAttendance ReportType = "attendance"
	ReportTypePayments   ReportType = "payments"
	ReportTypeResults    ReportType = "results"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued   ReportStatus = "queued"
	ReportStatusRunning  ReportStatus = "running"
	ReportStatusFinished ReportStatus = "finished"
	ReportStatusFailed   ReportStatus = "failed"
)

// ReportJob persisted background job metadata.
type ReportJob struct {
	ID         string          `db:"id" json:"id"`
	Type       ReportType      `db:"type" json:"type"`
	Format     ReportFormat    `db:"format" json:"format"`
	Status     ReportStatus    `db:"status" json:"status"`
	Params     ReportJobParams `db:"params" json:"params"`
	ResultPath *string         `db:"result_path" json:"-"`
	Error      *string         `db:"error" json:"error,omitempty"`
	CreatedBy  *string         `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// ReportJobParams stores dataset filters persisted as JSONB.
type ReportJobParams struct {
	Section  Section    `json:"section,omitempty"`
	Class    string     `json:"class,omitempty"`
	ExamID   string     `json:"examId,omitempty"`
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ReportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal report job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ReportJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ReportJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReportJobParams", value)
	}
	if len(data) == 0 {
		*p = ReportJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal report job params: %w", err)
	}
	return nil
}

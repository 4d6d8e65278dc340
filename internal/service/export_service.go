package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/export"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

// Renderer turns a dataset into a file payload.
type Renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportSources groups the list queries a report can draw from.
type ExportSources struct {
	Students   studentLister
	Attendance attendanceLister
	Payments   paymentLister
	Results    resultLister
}

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type paymentLister interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, error)
}

type resultLister interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, error)
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	sources   ExportSources
	storage   fileStorage
	renderers map[models.ReportFormat]Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the csv, pdf and xlsx renderers.
func NewExportService(sources ExportSources, storage fileStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sources: sources,
		storage: storage,
		renderers: map[models.ReportFormat]Renderer{
			models.ReportFormatCSV:  export.NewCSVExporter(),
			models.ReportFormatPDF:  export.NewPDFExporter(),
			models.ReportFormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Generate builds the dataset for the job, renders it and stores the file. It returns the stored path.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (string, error) {
	if job == nil {
		return "", fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return "", fmt.Errorf("unsupported format %s", job.Format)
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return "", err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return "", fmt.Errorf("render %s report: %w", job.Format, err)
	}
	path, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return "", err
	}
	s.logger.Debug("report rendered", zap.String("job_id", job.ID), zap.String("path", path), zap.Int("rows", len(dataset.Rows)))
	return path, nil
}

// ContentType returns the MIME type of a format.
func (s *ExportService) ContentType(format models.ReportFormat) string {
	if renderer, ok := s.renderers[format]; ok {
		return renderer.ContentType()
	}
	return "application/octet-stream"
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(path string) (*os.File, error) {
	return s.storage.Open(path)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(path string) error {
	return s.storage.Delete(path)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", job.Type, sanitizeFilename(job.ID), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ReportTypeStudents:
		return s.buildStudentDataset(ctx, job.Params)
	case models.ReportTypeAttendance:
		return s.buildAttendanceDataset(ctx, job.Params)
	case models.ReportTypePayments:
		return s.buildPaymentDataset(ctx, job.Params)
	case models.ReportTypeResults:
		return s.buildResultDataset(ctx, job.Params)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildStudentDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	students, _, err := s.sources.Students.List(ctx, models.StudentFilter{Section: params.Section, Class: params.Class})
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		rows = append(rows, map[string]string{
			"Name":     student.FullName(),
			"Gender":   student.Gender,
			"Section":  string(student.Section),
			"Class":    student.Class,
			"Guardian": student.GuardianName,
			"Phone":    student.GuardianPhone,
		})
	}
	return export.Dataset{
		Title:   titleFor("Students", params),
		Headers: []string{"Name", "Gender", "Section", "Class", "Guardian", "Phone"},
		Rows:    rows,
	}, nil
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	records, _, err := s.sources.Attendance.List(ctx, models.AttendanceFilter{
		Section:  params.Section,
		Class:    params.Class,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	})
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"Date":    formatReportDate(record.Date),
			"Student": record.StudentName,
			"Class":   record.Class,
			"Status":  string(record.Status),
			"Note":    record.Note,
		})
	}
	return export.Dataset{
		Title:   titleFor("Attendance", params),
		Headers: []string{"Date", "Student", "Class", "Status", "Note"},
		Rows:    rows,
	}, nil
}

func (s *ExportService) buildPaymentDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	payments, err := s.sources.Payments.List(ctx, models.PaymentFilter{DateFrom: params.DateFrom, DateTo: params.DateTo})
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(payments))
	for _, payment := range payments {
		rows = append(rows, map[string]string{
			"Date":        formatReportDate(payment.PaymentDate),
			"Student":     payment.StudentName,
			"Amount":      fmt.Sprintf("%.2f", payment.Amount),
			"Status":      string(payment.Status),
			"Description": payment.Description,
		})
	}
	return export.Dataset{
		Title:   titleFor("Payments", params),
		Headers: []string{"Date", "Student", "Amount", "Status", "Description"},
		Rows:    rows,
	}, nil
}

func (s *ExportService) buildResultDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	results, err := s.sources.Results.List(ctx, models.ResultFilter{ExamID: params.ExamID})
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([]map[string]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, map[string]string{
			"Exam":    result.ExamName,
			"Student": result.StudentName,
			"Subject": result.Subject,
			"Score":   fmt.Sprintf("%.2f", result.Score),
			"Grade":   string(result.Grade),
		})
	}
	return export.Dataset{
		Title:   titleFor("Results", params),
		Headers: []string{"Exam", "Student", "Subject", "Score", "Grade"},
		Rows:    rows,
	}, nil
}

func titleFor(kind string, params models.ReportJobParams) string {
	parts := []string{kind + " Report"}
	if params.Section != "" {
		parts = append(parts, string(params.Section))
	}
	if params.Class != "" {
		parts = append(parts, params.Class)
	}
	if params.DateFrom != nil || params.DateTo != nil {
		parts = append(parts, fmt.Sprintf("%s to %s", formatOptionalDate(params.DateFrom), formatOptionalDate(params.DateTo)))
	}
	return strings.Join(parts, " - ")
}

func formatReportDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "..."
	}
	return formatReportDate(*t)
}

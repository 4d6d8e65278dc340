package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	AttendanceBySection(ctx context.Context, filter models.AnalyticsFilter) ([]models.SectionAttendance, error)
	PaymentsByMonth(ctx context.Context, since time.Time) ([]models.MonthlyPayments, error)
	SubjectAverages(ctx context.Context, filter models.AnalyticsFilter) ([]models.SubjectAverage, error)
	GradeDistribution(ctx context.Context, filter models.AnalyticsFilter) ([]models.GroupCount, error)
}

// AnalyticsService provides read-optimised access to analytics datasets with cache integration.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger, now: time.Now}
}

// Overview returns the analytics aggregate. The boolean indicates whether data originated from cache.
func (s *AnalyticsService) Overview(ctx context.Context, filter models.AnalyticsFilter) (*models.Analytics, bool, error) {
	if filter.Section != "" && !filter.Section.Valid() {
		return nil, false, validationError(nil, "invalid section filter")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, false, validationError(nil, "dateTo must not be before dateFrom")
	}

	cacheKey := makeAnalyticsCacheKey("overview", string(filter.Section), formatTime(filter.DateFrom), formatTime(filter.DateTo))
	start := time.Now()
	analytics, hit, err := remember(ctx, s.cache, cacheKey, s.ttl, func(ctx context.Context) (*models.Analytics, error) {
		return s.compute(ctx, filter)
	})
	if err != nil {
		s.logger.Error("compute analytics", zap.Error(err))
		return nil, false, internalError(err, "failed to compute analytics")
	}
	if !hit {
		s.metrics.ObserveDBQuery("analytics_overview", time.Since(start))
	}
	return analytics, hit, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) compute(ctx context.Context, filter models.AnalyticsFilter) (*models.Analytics, error) {
	attendance, err := s.repo.AttendanceBySection(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range attendance {
		attendance[i].Rate = attendanceRate(attendance[i])
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	payments, err := s.repo.PaymentsByMonth(ctx, since)
	if err != nil {
		return nil, err
	}

	averages, err := s.repo.SubjectAverages(ctx, filter)
	if err != nil {
		return nil, err
	}

	grades, err := s.repo.GradeDistribution(ctx, filter)
	if err != nil {
		return nil, err
	}
	distribution := make(map[models.Grade]int, len(models.Grades()))
	for _, grade := range models.Grades() {
		distribution[grade] = 0
	}
	for _, row := range grades {
		distribution[models.Grade(row.Key)] = row.Count
	}

	if attendance == nil {
		attendance = []models.SectionAttendance{}
	}
	if payments == nil {
		payments = []models.MonthlyPayments{}
	}
	if averages == nil {
		averages = []models.SubjectAverage{}
	}

	return &models.Analytics{
		Attendance:        attendance,
		PaymentsByMonth:   payments,
		SubjectAverages:   averages,
		GradeDistribution: distribution,
		GeneratedAt:       now,
	}, nil
}

// attendanceRate counts late arrivals as attended, rounded to two decimals.
func attendanceRate(row models.SectionAttendance) float64 {
	total := row.Present + row.Absent + row.Late
	if total == 0 {
		return 0
	}
	rate := float64(row.Present+row.Late) / float64(total) * 100
	return math.Round(rate*100) / 100
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			part = "-"
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

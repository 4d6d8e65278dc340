package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
)

const statsCacheKey = "stats:dashboard"

type statsRepository interface {
	Totals(ctx context.Context) (repository.Totals, error)
	StudentsBySection(ctx context.Context) ([]models.GroupCount, error)
	EmployeesByRole(ctx context.Context) ([]models.GroupCount, error)
	AttendanceByStatus(ctx context.Context, from, to time.Time) ([]models.GroupCount, error)
	PaymentsByStatus(ctx context.Context) ([]models.GroupAmount, error)
}

// StatsService computes the dashboard headline statistics.
type StatsService struct {
	repo    statsRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatsService constructs the statistics service.
func NewStatsService(repo statsRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger, now: time.Now}
}

// Dashboard returns the aggregate statistics. The boolean reports a cache hit.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, bool, error) {
	start := time.Now()
	stats, hit, err := remember(ctx, s.cache, statsCacheKey, s.ttl, s.compute)
	if err != nil {
		s.logger.Error("compute dashboard stats", zap.Error(err))
		return nil, false, internalError(err, "failed to compute statistics")
	}
	if !hit {
		s.metrics.ObserveDBQuery("stats_dashboard", time.Since(start))
	}
	return stats, hit, nil
}

func (s *StatsService) compute(ctx context.Context) (*models.DashboardStats, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	bySection, err := s.repo.StudentsBySection(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.repo.EmployeesByRole(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.AttendanceByStatus(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalStudents:     totals.Students,
		TotalEmployees:    totals.Employees,
		TotalClassrooms:   totals.Classrooms,
		StudentsBySection: make(map[models.Section]int),
		EmployeesByRole:   make(map[models.EmployeeRole]int),
		AttendanceToday:   make(map[models.AttendanceStatus]int),
		Payments:          models.PaymentTotals{ByStatus: make(map[models.PaymentStatus]models.AmountCount)},
		GeneratedAt:       now,
	}
	for _, section := range models.Sections() {
		stats.StudentsBySection[section] = 0
	}
	for _, row := range bySection {
		stats.StudentsBySection[models.Section(row.Key)] = row.Count
	}
	for _, row := range byRole {
		stats.EmployeesByRole[models.EmployeeRole(row.Key)] = row.Count
	}
	for _, status := range []models.AttendanceStatus{models.AttendanceStatusPresent, models.AttendanceStatusAbsent, models.AttendanceStatusLate} {
		stats.AttendanceToday[status] = 0
	}
	for _, row := range today {
		stats.AttendanceToday[models.AttendanceStatus(row.Key)] = row.Count
	}
	for _, row := range payments {
		stats.Payments.ByStatus[models.PaymentStatus(row.Key)] = models.AmountCount{Amount: row.Amount, Count: row.Count}
		stats.Payments.TotalAmount += row.Amount
	}
	return stats, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-dashboard-api/api/swagger"
	"github.com/noah-isme/school-dashboard-api/internal/handler"
	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	"github.com/noah-isme/school-dashboard-api/pkg/cache"
	"github.com/noah-isme/school-dashboard-api/pkg/config"
	"github.com/noah-isme/school-dashboard-api/pkg/database"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
	"github.com/noah-isme/school-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-dashboard-api/pkg/storage"
)

// @title School Dashboard API
// @version 1.0.0
// @description Administration backend for students, staff, classrooms, attendance, payments and exams.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logr.Info("database schema up to date")
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without cache", zap.Error(err))
		redisClient = nil
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, redisClient != nil)
	validate := service.NewValidator()

	students := repository.NewStudentRepository(db)
	employees := repository.NewEmployeeRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	payments := repository.NewPaymentRepository(db)
	exams := repository.NewExamRepository(db)
	results := repository.NewResultRepository(db)
	users := repository.NewUserRepository(db)
	reportJobs := repository.NewReportRepository(db)

	studentSvc := service.NewStudentService(students, cacheSvc, validate, logr)
	employeeSvc := service.NewEmployeeService(employees, cacheSvc, validate, logr)
	classroomSvc := service.NewClassroomService(classrooms, employees, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendance, students, cacheSvc, metrics, validate, logr)
	paymentSvc := service.NewPaymentService(payments, students, cacheSvc, validate, logr)
	examSvc := service.NewExamService(exams, cacheSvc, validate, logr)
	resultSvc := service.NewResultService(results, exams, students, cacheSvc, validate, logr)
	statsSvc := service.NewStatsService(repository.NewStatsRepository(db), cacheSvc, metrics, cfg.Stats.CacheTTL, logr)
	analyticsSvc := service.NewAnalyticsService(repository.NewAnalyticsRepository(db), cacheSvc, metrics, cfg.Analytics.CacheTTL, logr)
	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	if cfg.Seed.AdminEmail != "" {
		created, err := authSvc.EnsureSuperAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, cfg.Seed.AdminName)
		if err != nil {
			return fmt.Errorf("seed superadmin: %w", err)
		}
		if created {
			logr.Info("superadmin account created", zap.String("email", cfg.Seed.AdminEmail))
		}
	}

	reportSvc, queue, err := buildReports(ctx, cfg, logr, metrics, validate, reportJobs, service.ExportSources{
		Students:   students,
		Attendance: attendance,
		Payments:   payments,
		Results:    results,
	})
	if err != nil {
		return err
	}
	if queue != nil {
		defer queue.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	ops := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Students:   handler.NewStudentHandler(studentSvc, attendanceSvc, paymentSvc, resultSvc),
		Employees:  handler.NewEmployeeHandler(employeeSvc),
		Classrooms: handler.NewClassroomHandler(classroomSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Payments:   handler.NewPaymentHandler(paymentSvc),
		Exams:      handler.NewExamHandler(examSvc, resultSvc),
		Results:    handler.NewResultHandler(resultSvc),
		Stats:      handler.NewStatsHandler(statsSvc),
		Analytics:  handler.NewAnalyticsHandler(analyticsSvc),
		Reports:    handler.NewReportHandler(reportSvc),
	}, handler.RouteDeps{
		Tokens: authSvc,
		Audit:  users,
		Logger: logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildReports wires the export pipeline. The returned queue is nil when reports are disabled.
func buildReports(
	ctx context.Context,
	cfg *config.Config,
	logr *zap.Logger,
	metrics *service.MetricsService,
	validate *validator.Validate,
	reportJobs *repository.ReportRepository,
	sources service.ExportSources,
) (*service.ReportService, *jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init report storage: %w", err)
	}
	signer := storage.NewDownloadSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(sources, store, logr)
	reportCfg := service.ReportServiceConfig{APIPrefix: cfg.APIPrefix}

	if !cfg.Reports.Enabled {
		logr.Info("report generation disabled")
		return service.NewReportService(reportJobs, nil, exporter, signer, validate, logr, reportCfg), nil, nil
	}

	worker := service.NewReportWorker(reportJobs, exporter, metrics, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		OnFailure:  worker.MarkFailed,
		Logger:     logr,
	})
	queue.Start(ctx)

	reports := service.NewReportService(reportJobs, queue, exporter, signer, validate, logr, reportCfg)
	if recovered := reports.RecoverPendingJobs(ctx); recovered > 0 {
		logr.Info("re-enqueued pending report jobs", zap.Int("count", recovered))
	}
	return reports, queue, nil
}

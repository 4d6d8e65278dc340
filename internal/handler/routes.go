package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/middleware"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Employees  *EmployeeHandler
	Classrooms *ClassroomHandler
	Attendance *AttendanceHandler
	Payments   *PaymentHandler
	Exams      *ExamHandler
	Results    *ResultHandler
	Stats      *StatsHandler
	Analytics  *AnalyticsHandler
	Reports    *ReportHandler
}

// RouteDeps carries the middleware collaborators of the route table.
type RouteDeps struct {
	Tokens middleware.TokenValidator
	Audit  middleware.AuditRecorder
	Logger *zap.Logger
}

// RegisterRoutes mounts the REST surface on api. Login and signed downloads are public.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, deps RouteDeps) {
	manage := middleware.RequireRoles(middleware.Managers...)
	record := middleware.RequireRoles(middleware.Recorders...)
	audit := func(resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, resource, deps.Logger)
	}

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/reports/download", h.Reports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens))
	secured.GET("/auth/me", h.Auth.Me)

	students := secured.Group("/students", audit("students"))
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.GET("/:id/attendance", h.Students.Attendance)
	students.GET("/:id/payments", h.Students.Payments)
	students.GET("/:id/results", h.Students.Results)
	students.POST("", manage, h.Students.Create)
	students.PATCH("/:id", manage, h.Students.Update)
	students.DELETE("/:id", manage, h.Students.Delete)

	employees := secured.Group("/employees", audit("employees"))
	employees.GET("", h.Employees.List)
	employees.GET("/:id", h.Employees.Get)
	employees.POST("", manage, h.Employees.Create)
	employees.PATCH("/:id", manage, h.Employees.Update)
	employees.DELETE("/:id", manage, h.Employees.Delete)

	classrooms := secured.Group("/classrooms", audit("classrooms"))
	classrooms.GET("", h.Classrooms.List)
	classrooms.GET("/:id", h.Classrooms.Get)
	classrooms.POST("", manage, h.Classrooms.Create)
	classrooms.PATCH("/:id", manage, h.Classrooms.Update)
	classrooms.DELETE("/:id", manage, h.Classrooms.Delete)

	attendance := secured.Group("/attendance", audit("attendance"))
	attendance.GET("", h.Attendance.List)
	attendance.POST("", record, h.Attendance.Create)
	attendance.POST("/batch", record, h.Attendance.CreateBatch)
	attendance.PATCH("/:id", record, h.Attendance.Update)
	attendance.DELETE("/:id", record, h.Attendance.Delete)

	payments := secured.Group("/payments", audit("payments"))
	payments.GET("", h.Payments.List)
	payments.GET("/:id", h.Payments.Get)
	payments.POST("", manage, h.Payments.Create)
	payments.PATCH("/:id", manage, h.Payments.Update)
	payments.DELETE("/:id", manage, h.Payments.Delete)

	exams := secured.Group("/exams", audit("exams"))
	exams.GET("", h.Exams.List)
	exams.GET("/:id", h.Exams.Get)
	exams.GET("/:id/results", h.Exams.Results)
	exams.POST("", manage, h.Exams.Create)
	exams.PATCH("/:id", manage, h.Exams.Update)
	exams.DELETE("/:id", manage, h.Exams.Delete)

	results := secured.Group("/results", audit("results"))
	results.GET("", h.Results.List)
	results.POST("", record, h.Results.Create)
	results.PATCH("/:id", record, h.Results.Update)
	results.DELETE("/:id", record, h.Results.Delete)

	secured.GET("/stats", h.Stats.Dashboard)
	secured.GET("/analytics", h.Analytics.Overview)
	secured.GET("/analytics/system", manage, h.Analytics.System)

	reports := secured.Group("/reports", audit("reports"))
	reports.POST("", record, h.Reports.Create)
	reports.GET("/:id", h.Reports.Status)
}

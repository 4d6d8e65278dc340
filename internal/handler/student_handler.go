package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error)
}

type paymentLister interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, error)
}

type resultLister interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultRecord, error)
}

// StudentHandler exposes student endpoints and the per-student activity views.
type StudentHandler struct {
	students   studentService
	attendance attendanceLister
	payments   paymentLister
	results    resultLister
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, attendance attendanceLister, payments paymentLister, results resultLister) *StudentHandler {
	return &StudentHandler{students: students, attendance: attendance, payments: payments, results: results}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by full name"
// @Param section query string false "Filter by section"
// @Param class query string false "Filter by class"
// @Param page query int false "Page"
// @Param limit query int false "Page size, 0 returns every row"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Section = models.Section(c.Query("section"))
	filter.Class = strings.TrimSpace(c.Query("class"))
	filter.Page, filter.PageSize = paging(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	markCreated(c, student.ID)
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Description Removes the student together with its attendance, payments and results
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Attendance godoc
// @Summary Attendance history of a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param dateFrom query string false "Start date"
// @Param dateTo query string false "End date"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *StudentHandler) Attendance(c *gin.Context) {
	id, ok := h.ensureStudent(c)
	if !ok {
		return
	}
	from, to, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.AttendanceFilter{StudentID: id, DateFrom: from, DateTo: to}
	filter.Page, filter.PageSize = paging(c)
	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Payments godoc
// @Summary Payments of a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/payments [get]
func (h *StudentHandler) Payments(c *gin.Context) {
	id, ok := h.ensureStudent(c)
	if !ok {
		return
	}
	payments, err := h.payments.List(c.Request.Context(), models.PaymentFilter{StudentID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Results godoc
// @Summary Exam results of a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/results [get]
func (h *StudentHandler) Results(c *gin.Context) {
	id, ok := h.ensureStudent(c)
	if !ok {
		return
	}
	results, err := h.results.List(c.Request.Context(), models.ResultFilter{StudentID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// ensureStudent turns an unknown id into a 404 instead of an empty list.
func (h *StudentHandler) ensureStudent(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := h.students.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return "", false
	}
	return id, true
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type attendanceService interface {
	attendanceLister
	Create(ctx context.Context, req dto.AttendanceEntry) (*models.Attendance, error)
	CreateBatch(ctx context.Context, req dto.AttendanceBatchRequest) (*models.AttendanceBatchResult, error)
	Update(ctx context.Context, id string, req dto.AttendancePatch) (*models.Attendance, error)
	Delete(ctx context.Context, id string) error
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List godoc
// @Summary List attendance
// @Tags Attendance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param section query string false "Filter by section"
// @Param class query string false "Filter by class"
// @Param status query string false "present, absent or late"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size, 0 returns every row"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.AttendanceFilter{
		StudentID: c.Query("studentId"),
		Section:   models.Section(c.Query("section")),
		Class:     strings.TrimSpace(c.Query("class")),
		Status:    models.AttendanceStatus(c.Query("status")),
		DateFrom:  from,
		DateTo:    to,
		SortOrder: c.Query("sortOrder"),
	}
	filter.Page, filter.PageSize = paging(c)

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Create godoc
// @Summary Record attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.AttendanceEntry true "Attendance mark"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req dto.AttendanceEntry
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.attendance.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	markCreated(c, record.ID)
	response.Created(c, record)
}

// CreateBatch godoc
// @Summary Record attendance in bulk
// @Description Every entry is stored independently. The response lists the outcome per entry.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.AttendanceBatchRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/batch [post]
func (h *AttendanceHandler) CreateBatch(c *gin.Context) {
	var req dto.AttendanceBatchRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.attendance.CreateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Update godoc
// @Summary Update attendance status or note
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.AttendancePatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [patch]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req dto.AttendancePatch
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.attendance.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete attendance record
// @Tags Attendance
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

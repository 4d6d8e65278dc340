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

type employeeService interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, req service.CreateEmployeeRequest) (*models.Employee, error)
	Update(ctx context.Context, id string, req service.UpdateEmployeeRequest) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
}

// EmployeeHandler exposes staff endpoints.
type EmployeeHandler struct {
	employees employeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees employeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param search query string false "Search by full name"
// @Param role query string false "Filter by role"
// @Param section query string false "Filter by section"
// @Param page query int false "Page"
// @Param limit query int false "Page size, 0 returns every row"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	filter := models.EmployeeFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Role:      models.EmployeeRole(c.Query("role")),
		Section:   models.Section(c.Query("section")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = paging(c)

	employees, pagination, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	markCreated(c, employee.ID)
	response.Created(c, employee)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateEmployeeRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [patch]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Delete godoc
// @Summary Delete employee
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

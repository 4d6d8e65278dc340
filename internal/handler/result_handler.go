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

type resultService interface {
	resultLister
	Create(ctx context.Context, req service.CreateResultRequest) (*models.Result, error)
	Update(ctx context.Context, id string, req service.UpdateResultRequest) (*models.Result, error)
	Delete(ctx context.Context, id string) error
}

// ResultHandler exposes exam result endpoints. Grades are derived server side.
type ResultHandler struct {
	results resultService
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results resultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// List godoc
// @Summary List results
// @Tags Results
// @Produce json
// @Param examId query string false "Filter by exam"
// @Param studentId query string false "Filter by student"
// @Param subject query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) List(c *gin.Context) {
	filter := models.ResultFilter{
		ExamID:    c.Query("examId"),
		StudentID: c.Query("studentId"),
		Subject:   strings.TrimSpace(c.Query("subject")),
	}
	results, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Create godoc
// @Summary Record exam result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.CreateResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Create(c *gin.Context) {
	var req service.CreateResultRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.results.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	markCreated(c, result.ID)
	response.Created(c, result)
}

// Update godoc
// @Summary Update exam result
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.UpdateResultRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /results/{id} [patch]
func (h *ResultHandler) Update(c *gin.Context) {
	var req service.UpdateResultRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.results.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete exam result
// @Tags Results
// @Param id path string true "Result ID"
// @Success 204
// @Router /results/{id} [delete]
func (h *ResultHandler) Delete(c *gin.Context) {
	if err := h.results.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

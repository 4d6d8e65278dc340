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

type examService interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, req service.CreateExamRequest) (*models.Exam, error)
	Update(ctx context.Context, id string, req service.UpdateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, id string) error
}

// ExamHandler exposes exam endpoints.
type ExamHandler struct {
	exams   examService
	results resultLister
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams examService, results resultLister) *ExamHandler {
	return &ExamHandler{exams: exams, results: results}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param section query string false "Filter by section"
// @Param class query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter := models.ExamFilter{
		Section: models.Section(c.Query("section")),
		Class:   strings.TrimSpace(c.Query("class")),
	}
	exams, err := h.exams.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Get godoc
// @Summary Get exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Schedule exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.CreateExamRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	markCreated(c, exam.ID)
	response.Created(c, exam)
}

// Update godoc
// @Summary Update exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body service.UpdateExamRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [patch]
func (h *ExamHandler) Update(c *gin.Context) {
	var req service.UpdateExamRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	exam, err := h.exams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Results godoc
// @Summary Results of an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Param subject query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/results [get]
func (h *ExamHandler) Results(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.ResultFilter{ExamID: exam.ID, Subject: strings.TrimSpace(c.Query("subject"))}
	results, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

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

type classroomService interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error)
	Get(ctx context.Context, id string) (*models.ClassroomDetail, error)
	Create(ctx context.Context, req service.CreateClassroomRequest) (*models.ClassroomDetail, error)
	Update(ctx context.Context, id string, req service.UpdateClassroomRequest) (*models.ClassroomDetail, error)
	Delete(ctx context.Context, id string) error
}

// ClassroomHandler exposes classroom endpoints.
type ClassroomHandler struct {
	classrooms classroomService
}

// NewClassroomHandler constructs ClassroomHandler.
func NewClassroomHandler(classrooms classroomService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms}
}

// List godoc
// @Summary List classrooms
// @Tags Classrooms
// @Produce json
// @Param section query string false "Filter by section"
// @Param teacherId query string false "Filter by homeroom teacher"
// @Param search query string false "Search by name"
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	filter := models.ClassroomFilter{
		Section:   models.Section(c.Query("section")),
		TeacherID: c.Query("teacherId"),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	classrooms, err := h.classrooms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// Get godoc
// @Summary Get classroom
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	classroom, err := h.classrooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Create godoc
// @Summary Create classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body service.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req service.CreateClassroomRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	classroom, err := h.classrooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	markCreated(c, classroom.ID)
	response.Created(c, classroom)
}

// Update godoc
// @Summary Update classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param id path string true "Classroom ID"
// @Param payload body service.UpdateClassroomRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [patch]
func (h *ClassroomHandler) Update(c *gin.Context) {
	var req service.UpdateClassroomRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	classroom, err := h.classrooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Delete godoc
// @Summary Delete classroom
// @Tags Classrooms
// @Param id path string true "Classroom ID"
// @Success 204
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) Delete(c *gin.Context) {
	if err := h.classrooms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

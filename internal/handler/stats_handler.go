package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type statsService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, bool, error)
}

// StatsHandler serves the dashboard headline numbers.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Dashboard godoc
// @Summary Dashboard statistics
// @Description Totals per entity, students per section, employees per role, today's attendance and payment sums
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	stats, cacheHit, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, metaWithTiming(c, start))
}

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

type analyticsService interface {
	Overview(ctx context.Context, filter models.AnalyticsFilter) (*models.Analytics, bool, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview godoc
// @Summary Analytics overview
// @Description Attendance per section, monthly payments, subject averages and grade distribution
// @Tags Analytics
// @Produce json
// @Param section query string false "Restrict to one section"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /analytics [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	from, to, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.AnalyticsFilter{
		Section:  models.Section(c.Query("section")),
		DateFrom: from,
		DateTo:   to,
	}
	start := time.Now()
	overview, cacheHit, err := h.analytics.Overview(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, overview, nil, metaWithTiming(c, start))
}

// System godoc
// @Summary Process level metrics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil)
}

func metaWithTiming(c *gin.Context, start time.Time) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
		meta["processing_time_ms"] = time.Since(start).Milliseconds()
	}
	return meta
}

package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const dateLayout = "2006-01-02"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// paging reads page and limit. A missing or zero limit means every row.
func paging(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}
	return page, limit
}

// parseDateQuery accepts either a plain date or an RFC3339 timestamp.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	from, err := parseDateQuery(c, "dateFrom")
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDateQuery(c, "dateTo")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func markCreated(c *gin.Context, id string) {
	c.Set(middleware.ContextResourceIDKey, id)
}

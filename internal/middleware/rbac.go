package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

// Role groups used by the route table.
var (
	// Managers may write every resource.
	Managers = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}
	// Recorders may additionally write attendance and results.
	Recorders = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff}
)

// RequireRoles enforces role-based access control for routes. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, permitted := allowed[claims.Role]; !permitted {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

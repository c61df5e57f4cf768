package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/auth"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// AuthMiddleware validates the bearer token and stores the caller's
// identity on the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("missing authorization header"))
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("authorization header must be a bearer token"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles gates a route group to the given roles. The 403 payload
// carries the caller's own dashboard path so the frontend can redirect.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := models.UserRole(c.GetString(ContextRole))
		if !allowed[role] {
			err := apperrors.NewForbiddenError("this area is not available for your role").
				WithDetails(map[string]string{"dashboard_path": role.DashboardPath()})
			apperrors.HandleError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireProvider shortcuts the common mechanic-or-tow gate.
func RequireProvider() gin.HandlerFunc {
	return RequireRoles(models.UserRoleMechanic, models.UserRoleTow)
}

// UserID reads the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Role reads the authenticated role set by AuthMiddleware.
func Role(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(ContextRole))
}

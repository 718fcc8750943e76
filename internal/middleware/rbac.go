package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
	"github.com/lavideas/kaizen-api/pkg/response"
)

// RequireRoles restricts a route to the listed roles. The "self"
// pseudo-role additionally permits requests whose :userId path segment
// matches the authenticated user.
const RoleSelf models.UserRole = "self"

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowSelf := false
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		if role == RoleSelf {
			allowSelf = true
			continue
		}
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := value.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("userId"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

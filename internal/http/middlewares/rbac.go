package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortUnauthenticated(c, "Missing identity context")
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"msg": "You do not have permission to perform this action.",
				"error": gin.H{
					"code":    "forbidden",
					"message": "You do not have permission to perform this action.",
				},
			})
			return
		}
		c.Next()
	}
}

package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin is the admin capability. It composes after RequireAuth:
// no identity on the context is a 401, identity without the admin flag
// is a 403.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok := UserIDFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if !IsAdminFromContext(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin access required",
				},
			})
			return
		}
		c.Next()
	}
}

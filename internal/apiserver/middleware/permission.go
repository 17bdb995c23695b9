package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// RequireLevel creates a middleware that rejects callers below the given
// permission level. It must run after JWTAuthMiddleware.
func RequireLevel(required cnst.PermissionLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !claims.PermissionLevel.Allows(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

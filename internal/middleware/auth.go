package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequired middleware checks if user is authenticated.
// API callers get a 401 JSON error, browsers are sent to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c) != nil {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

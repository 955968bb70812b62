package handlers

import (
	"net/http"

	"github.com/alimgiray/better-github/internal/middleware"
	"github.com/gin-gonic/gin"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Index describes the signed-in user, or points anonymous callers at the login flow
func (h *HomeHandler) Index(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"login_url":     "/auth/github",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       session.UserID,
			"username": session.Username,
			"email":    session.Email,
		},
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/better-github/internal/middleware"
	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
)

// currentUser loads the signed-in user. It writes a 401 and returns nil when there is none.
func currentUser(c *gin.Context, userService *services.UserService) *models.User {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}

	user, err := userService.GetUserByID(session.UserID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.WithError(err).Error("Failed to load session user")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	return user
}

// respondError maps service and GitHub errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var ghErr *github.ErrorResponse
	var rateErr *github.RateLimitError

	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, services.ErrQueryRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter \"q\" is required"})
	case errors.Is(err, services.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "GitHub rate limit exceeded"})
	case errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode < http.StatusInternalServerError:
		c.JSON(ghErr.Response.StatusCode, gin.H{"error": ghErr.Message})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
	}
}

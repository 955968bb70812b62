package handlers

import (
	"net/http"

	"github.com/alimgiray/better-github/internal/middleware"
	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *services.UserSettingsService
}

func NewSettingsHandler(settingsService *services.UserSettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func sessionUserID(c *gin.Context) (string, bool) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	return session.UserID, true
}

// Get returns the user's settings, creating the defaults on first access
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Get(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update applies a partial settings update
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		return
	}

	var update models.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	settings, err := h.settingsService.Update(userID, &update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Delete resets the user's settings to the defaults
func (h *SettingsHandler) Delete(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		return
	}

	if err := h.settingsService.Delete(userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

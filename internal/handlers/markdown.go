package handlers

import (
	"net/http"

	"github.com/alimgiray/better-github/internal/services"
	"github.com/gin-gonic/gin"
)

type MarkdownHandler struct {
	markdownService *services.MarkdownService
}

func NewMarkdownHandler(markdownService *services.MarkdownService) *MarkdownHandler {
	return &MarkdownHandler{markdownService: markdownService}
}

type renderMarkdownRequest struct {
	Markdown string `json:"markdown"`
}

// Render converts markdown to sanitized HTML with mention links and highlighted code
func (h *MarkdownHandler) Render(c *gin.Context) {
	var req renderMarkdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	html, err := h.markdownService.RenderMarkdown(req.Markdown)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": html})
}

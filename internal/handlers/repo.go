package handlers

import (
	"net/http"
	"strings"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RepoHandler struct {
	githubAPIService *services.GitHubAPIService
	markdownService  *services.MarkdownService
	userService      *services.UserService
}

func NewRepoHandler(githubAPIService *services.GitHubAPIService, markdownService *services.MarkdownService, userService *services.UserService) *RepoHandler {
	return &RepoHandler{
		githubAPIService: githubAPIService,
		markdownService:  markdownService,
		userService:      userService,
	}
}

// Star stars the repository for the signed-in user
func (h *RepoHandler) Star(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	if err := h.githubAPIService.StarRepo(c.Request.Context(), user.GitHubAccessToken, c.Param("owner"), c.Param("repo")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unstar removes the signed-in user's star from the repository
func (h *RepoHandler) Unstar(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	if err := h.githubAPIService.UnstarRepo(c.Request.Context(), user.GitHubAccessToken, c.Param("owner"), c.Param("repo")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Create creates a repository owned by the signed-in user
func (h *RepoHandler) Create(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	var req models.CreateRepoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Repository name is required"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Repository name is required"})
		return
	}

	fullName, err := h.githubAPIService.CreateRepo(c.Request.Context(), user.GitHubAccessToken, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(logrus.Fields{"user": user.Username, "repo": fullName}).Info("Repository created")
	c.JSON(http.StatusCreated, gin.H{"full_name": fullName})
}

// SearchFiles lists repository files whose path contains the query
func (h *RepoHandler) SearchFiles(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	matches, err := h.githubAPIService.SearchRepoFiles(c.Request.Context(), user.GitHubAccessToken,
		c.Param("owner"), c.Param("repo"), c.Query("ref"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": matches})
}

// FileContent returns a file's content trimmed for use as chat context
func (h *RepoHandler) FileContent(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter \"path\" is required"})
		return
	}

	file, err := h.githubAPIService.FetchFileContentForContext(c.Request.Context(), user.GitHubAccessToken,
		c.Param("owner"), c.Param("repo"), path, c.Query("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, file)
}

// Blob returns a file rendered for the code viewer, or as HTML for markdown files
func (h *RepoHandler) Blob(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter \"path\" is required"})
		return
	}

	content, err := h.githubAPIService.GetFileContent(c.Request.Context(), user.GitHubAccessToken,
		c.Param("owner"), c.Param("repo"), path, c.Query("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	if content == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	highlighted, err := h.markdownService.HighlightFile(content, path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, highlighted)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/alimgiray/better-github/internal/services"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	githubAPIService *services.GitHubAPIService
	userService      *services.UserService
}

func NewSearchHandler(githubAPIService *services.GitHubAPIService, userService *services.UserService) *SearchHandler {
	return &SearchHandler{
		githubAPIService: githubAPIService,
		userService:      userService,
	}
}

// SearchUsers searches GitHub users, listing organization members first when org is given
func (h *SearchHandler) SearchUsers(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	// unparsable sizes fall back to the default page size
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	result, err := h.githubAPIService.SearchUsers(c.Request.Context(), user.GitHubAccessToken,
		c.Query("q"), c.Query("org"), services.ClampPerPage(perPage))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

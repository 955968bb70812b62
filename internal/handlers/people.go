package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/gin-gonic/gin"
)

type PeopleHandler struct {
	contributorService *services.ContributorService
	rankingService     *services.PeopleRankingService
	exportService      *services.ExportService
	userService        *services.UserService
}

func NewPeopleHandler(
	contributorService *services.ContributorService,
	rankingService *services.PeopleRankingService,
	exportService *services.ExportService,
	userService *services.UserService,
) *PeopleHandler {
	return &PeopleHandler{
		contributorService: contributorService,
		rankingService:     rankingService,
		exportService:      exportService,
		userService:        userService,
	}
}

type peopleResponse struct {
	*models.PeopleView
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// buildView loads the roster and ranks it for the request's query and sort mode.
// It writes the response itself and returns nil when the view cannot be built.
func (h *PeopleHandler) buildView(c *gin.Context) (*models.PeopleView, *models.ContributorSnapshot) {
	user := currentUser(c, h.userService)
	if user == nil {
		return nil, nil
	}

	owner, repo := c.Param("owner"), c.Param("repo")
	userID := user.ID.String()

	snapshot, err := h.contributorService.GetRoster(c.Request.Context(), user.GitHubAccessToken, &userID, owner, repo)
	if errors.Is(err, services.ErrStatsPending) {
		c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
		return nil, nil
	}
	if err != nil {
		respondError(c, err)
		return nil, nil
	}

	mode := models.ParseSortMode(c.Query("sort"))
	return h.rankingService.BuildView(owner, repo, snapshot.Roster, c.Query("q"), mode), snapshot
}

// View returns the ranked people view of a repository
func (h *PeopleHandler) View(c *gin.Context) {
	view, snapshot := h.buildView(c)
	if view == nil {
		return
	}

	c.JSON(http.StatusOK, peopleResponse{
		PeopleView: view,
		Source:     snapshot.Source,
		FetchedAt:  snapshot.FetchedAt,
	})
}

// Export downloads the people view as a spreadsheet
func (h *PeopleHandler) Export(c *gin.Context) {
	view, _ := h.buildView(c)
	if view == nil {
		return
	}

	filename := services.LeaderboardFilename(view.Owner, view.Repo, view.SortMode)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := h.exportService.WriteLeaderboard(view, c.Writer); err != nil {
		logger.WithError(err).WithField("file", filename).Error("Failed to write leaderboard export")
	}
}

// Refresh queues a background refresh of the repository's contributor statistics.
// With force=true the cached roster is dropped first so readers wait for fresh data.
func (h *PeopleHandler) Refresh(c *gin.Context) {
	user := currentUser(c, h.userService)
	if user == nil {
		return
	}

	owner, repo := c.Param("owner"), c.Param("repo")
	if force, _ := strconv.ParseBool(c.Query("force")); force {
		if err := h.contributorService.Invalidate(owner, repo); err != nil {
			respondError(c, err)
			return
		}
	}

	userID := user.ID.String()
	job, err := h.contributorService.EnqueueRefresh(models.RepoFullName(owner, repo), &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": job.Status,
		"job_id": job.ID,
	})
}

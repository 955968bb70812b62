package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/better-github/internal/middleware"
	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/config"
	"github.com/alimgiray/better-github/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"
)

// fixture is a router wired like the server, with GitHub served by a local mux
type fixture struct {
	router *gin.Engine
	db     *sql.DB
	github *http.ServeMux
	user   *models.User
	cookie string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, config.Load())
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, github: http.NewServeMux()}

	server := httptest.NewServer(f.github)
	t.Cleanup(server.Close)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	clients := func(token string) *github.Client {
		client := github.NewClient(nil)
		client.BaseURL = baseURL
		return client
	}

	userRepo := repositories.NewUserRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	userService := services.NewUserService(userRepo)
	contributorService := services.NewContributorService(
		repositories.NewContributorSnapshotRepository(db), jobRepo,
		services.GitHubSourceFactory(clients), time.Hour,
	)
	markdownService := services.NewMarkdownService()
	githubAPIService := services.NewGitHubAPIService(clients)

	f.user = models.NewUser("alice", "Alice", "alice@example.com", "", "gh-token")
	require.NoError(t, userRepo.Create(f.user))
	f.cookie = sessionCookie(t, f.user)

	authHandler := NewAuthHandler(userService, services.NewGitHubService(clients))
	peopleHandler := NewPeopleHandler(contributorService, services.NewPeopleRankingService(), services.NewExportService(), userService)
	repoHandler := NewRepoHandler(githubAPIService, markdownService, userService)
	searchHandler := NewSearchHandler(githubAPIService, userService)
	settingsHandler := NewSettingsHandler(services.NewUserSettingsService(repositories.NewUserSettingsRepository(db)))
	markdownHandler := NewMarkdownHandler(markdownService)

	router := gin.New()
	router.Use(middleware.SessionMiddleware())
	router.NoRoute(NewNotFoundHandler().NotFound)
	router.GET("/", NewHomeHandler().Index)
	router.GET("/health", NewHealthHandler(db).HealthCheck)
	router.GET("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/auth/github", authHandler.GitHubLogin)
	router.GET("/auth/github/callback", authHandler.GitHubCallback)

	api := router.Group("/api", middleware.AuthRequired())
	api.GET("/repos/:owner/:repo/people", peopleHandler.View)
	api.GET("/repos/:owner/:repo/people/export", peopleHandler.Export)
	api.POST("/repos/:owner/:repo/people/refresh", peopleHandler.Refresh)
	api.PUT("/repos/:owner/:repo/star", repoHandler.Star)
	api.DELETE("/repos/:owner/:repo/star", repoHandler.Unstar)
	api.POST("/repos", repoHandler.Create)
	api.GET("/repos/:owner/:repo/files/search", repoHandler.SearchFiles)
	api.GET("/repos/:owner/:repo/files/content", repoHandler.FileContent)
	api.GET("/repos/:owner/:repo/blob", repoHandler.Blob)
	api.POST("/markdown", markdownHandler.Render)
	api.GET("/search-users", searchHandler.SearchUsers)
	api.GET("/settings", settingsHandler.Get)
	api.PATCH("/settings", settingsHandler.Update)
	api.DELETE("/settings", settingsHandler.Delete)

	f.router = router
	return f
}

// sessionCookie signs a session for user the way the login callback does
func sessionCookie(t *testing.T, user *models.User) string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.NoError(t, middleware.SetSession(c, user.ID.String(), user.Username, user.Email))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0].Value
}

func (f *fixture) do(method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authenticated {
		req.AddCookie(&http.Cookie{Name: "session", Value: f.cookie})
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

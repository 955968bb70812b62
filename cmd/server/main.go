package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/better-github/internal/handlers"
	"github.com/alimgiray/better-github/internal/middleware"
	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/internal/workers"
	"github.com/alimgiray/better-github/pkg/config"
	"github.com/alimgiray/better-github/pkg/database"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/gin-gonic/gin"
)

type app struct {
	userService         *services.UserService
	githubService       *services.GitHubService
	contributorService  *services.ContributorService
	githubAPIService    *services.GitHubAPIService
	markdownService     *services.MarkdownService
	userSettingsService *services.UserSettingsService
}

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init()
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)
	snapshotRepo := repositories.NewContributorSnapshotRepository(database.DB)
	settingsRepo := repositories.NewUserSettingsRepository(database.DB)

	clients := services.ClientFactory(services.NewGitHubClient)
	contributorService := services.NewContributorService(
		snapshotRepo, jobRepo, services.GitHubSourceFactory(clients), config.AppConfig.StatsCacheTTL(),
	)

	a := &app{
		userService:         services.NewUserService(userRepo),
		githubService:       services.NewGitHubService(clients),
		contributorService:  contributorService,
		githubAPIService:    services.NewGitHubAPIService(clients),
		markdownService:     services.NewMarkdownService(),
		userSettingsService: services.NewUserSettingsService(settingsRepo),
	}

	// Start workers
	workerManager := workers.NewWorkerManager(jobRepo, userRepo, contributorService)
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go services.NewSchedulerService(jobRepo, services.DefaultJobRetention).StartScheduler(schedulerCtx)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.SessionMiddleware())
	setupRoutes(router, a)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	stopScheduler()
	if err := workerManager.StopAll(); err != nil {
		logger.Errorf("Failed to stop workers: %v", err)
	}
	logger.Info("Server stopped")
}

func setupRoutes(router *gin.Engine, a *app) {
	// Initialize handlers
	homeHandler := handlers.NewHomeHandler()
	authHandler := handlers.NewAuthHandler(a.userService, a.githubService)
	healthHandler := handlers.NewHealthHandler(database.DB)
	peopleHandler := handlers.NewPeopleHandler(a.contributorService, services.NewPeopleRankingService(), services.NewExportService(), a.userService)
	repoHandler := handlers.NewRepoHandler(a.githubAPIService, a.markdownService, a.userService)
	searchHandler := handlers.NewSearchHandler(a.githubAPIService, a.userService)
	settingsHandler := handlers.NewSettingsHandler(a.userSettingsService)
	markdownHandler := handlers.NewMarkdownHandler(a.markdownService)

	router.NoRoute(handlers.NewNotFoundHandler().NotFound)

	// Home page
	router.GET("/", homeHandler.Index)

	// Auth routes
	router.GET("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/auth/github", authHandler.GitHubLogin)
	router.GET("/auth/github/callback", authHandler.GitHubCallback)

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.AuthRequired())
	{
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
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}

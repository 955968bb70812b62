package handlers

import (
	"net/http"

	"github.com/alimgiray/better-github/internal/middleware"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

type AuthHandler struct {
	userService   *services.UserService
	githubService *services.GitHubService
}

func NewAuthHandler(userService *services.UserService, githubService *services.GitHubService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		githubService: githubService,
	}
}

// Login describes the login state and any error left by the OAuth callback
func (h *AuthHandler) Login(c *gin.Context) {
	session := middleware.GetSession(c)

	c.JSON(http.StatusOK, gin.H{
		"authenticated": session != nil,
		"login_url":     "/auth/github",
		"error":         c.Query("error"),
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	c.Redirect(http.StatusFound, "/")
}

// GitHubLogin initiates GitHub OAuth flow
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth/github", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.githubService.GetAuthURL(state))
}

// GitHubCallback handles GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/auth/github", "", false, true)
	if err != nil || state == "" || state != c.Query("state") {
		c.Redirect(http.StatusFound, "/login?error=invalid_state")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/login?error=no_code")
		return
	}

	token, err := h.githubService.ExchangeCodeForToken(c.Request.Context(), code)
	if err != nil {
		logger.WithError(err).Warn("GitHub token exchange failed")
		c.Redirect(http.StatusFound, "/login?error=token_exchange_failed")
		return
	}

	githubUser, err := h.githubService.GetUserInfo(c.Request.Context(), token.AccessToken)
	if err != nil {
		logger.WithError(err).Warn("Failed to load GitHub user")
		c.Redirect(http.StatusFound, "/login?error=user_info_failed")
		return
	}

	user, err := h.userService.UpsertFromGitHub(githubUser, token.AccessToken)
	if err != nil {
		logger.WithError(err).Error("Failed to store user")
		c.Redirect(http.StatusFound, "/login?error=user_update_failed")
		return
	}

	if err := middleware.SetSession(c, user.ID.String(), user.Username, user.Email); err != nil {
		c.Redirect(http.StatusFound, "/login?error=session_creation_failed")
		return
	}

	logger.WithFields(logrus.Fields{"user_id": user.ID.String(), "username": user.Username}).Info("User signed in")
	c.Redirect(http.StatusFound, "/")
}

package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/better-github/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubService handles the GitHub OAuth flow
type GitHubService struct {
	oauthConfig *oauth2.Config
	clients     ClientFactory
}

type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func NewGitHubService(clients ClientFactory) *GitHubService {
	oauthConfig := &oauth2.Config{
		ClientID:     config.AppConfig.GitHub.ClientID,
		ClientSecret: config.AppConfig.GitHub.ClientSecret,
		RedirectURL:  config.AppConfig.GitHub.CallbackURL,
		Scopes: []string{
			"user:email", // Access to user's email addresses
			"read:user",  // Read access to user profile data
			"read:org",   // Organization-scoped user search
			"repo",       // Star and create repositories, read private stats
		},
		Endpoint: github.Endpoint,
	}

	return &GitHubService{
		oauthConfig: oauthConfig,
		clients:     clients,
	}
}

// GetAuthURL returns the GitHub OAuth authorization URL for the given state
func (s *GitHubService) GetAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCodeForToken exchanges authorization code for access token
func (s *GitHubService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo retrieves the authenticated user's profile from GitHub.
// A private profile email is replaced by the primary verified address when available.
func (s *GitHubService) GetUserInfo(ctx context.Context, accessToken string) (*GitHubUser, error) {
	client := s.clients(accessToken)

	ghUser, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	user := &GitHubUser{
		ID:        ghUser.GetID(),
		Login:     ghUser.GetLogin(),
		Name:      ghUser.GetName(),
		Email:     ghUser.GetEmail(),
		AvatarURL: ghUser.GetAvatarURL(),
	}

	if user.Email == "" {
		emails, _, err := client.Users.ListEmails(ctx, nil)
		if err == nil {
			for _, email := range emails {
				if email.GetPrimary() && email.GetVerified() {
					user.Email = email.GetEmail()
					break
				}
			}
		}
	}

	return user, nil
}

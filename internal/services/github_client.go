package services

import (
	"context"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// ClientFactory builds a GitHub API client for an access token
type ClientFactory func(token string) *github.Client

// NewGitHubClient creates a GitHub client with the provided token.
// An empty token yields an unauthenticated client.
func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return github.NewClient(tc)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sourcegraph/conc"
)

const (
	DefaultSearchPerPage = 30
	MaxSearchPerPage     = 100
	MaxFileMatches       = 15
	MaxContextFileChars  = 50000
)

// GitHubAPIService proxies repository and user operations for the signed-in user
type GitHubAPIService struct {
	clients ClientFactory
}

func NewGitHubAPIService(clients ClientFactory) *GitHubAPIService {
	return &GitHubAPIService{clients: clients}
}

func (s *GitHubAPIService) client(token string) (*github.Client, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return s.clients(token), nil
}

// ClampPerPage bounds a requested page size to [1, 100]; zero selects the default
func ClampPerPage(perPage int) int {
	if perPage == 0 {
		return DefaultSearchPerPage
	}
	if perPage < 1 {
		return 1
	}
	if perPage > MaxSearchPerPage {
		return MaxSearchPerPage
	}
	return perPage
}

// SearchUsers searches GitHub users. With an org, members matching the query are
// listed first, followed by global matches, without duplicates.
func (s *GitHubAPIService) SearchUsers(ctx context.Context, token, query, org string, perPage int) (*models.SearchUsersResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	client, err := s.client(token)
	if err != nil {
		return nil, err
	}
	perPage = ClampPerPage(perPage)
	org = strings.TrimSpace(org)

	if org == "" {
		return searchUsers(ctx, client, query, perPage)
	}

	var orgResult, globalResult *models.SearchUsersResult
	var orgErr, globalErr error
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		orgResult, orgErr = searchUsers(ctx, client, fmt.Sprintf("%s org:%s", query, org), perPage)
	})
	wg.Go(func() {
		globalResult, globalErr = searchUsers(ctx, client, query, perPage)
	})
	wg.Wait()

	if orgErr != nil || globalErr != nil {
		if orgErr != nil {
			logger.WithError(orgErr).WithField("org", org).Warn("Org user search failed, falling back to global search")
		}
		if globalErr == nil {
			return globalResult, nil
		}
		return searchUsers(ctx, client, query, perPage)
	}

	return mergeUserResults(orgResult.Items, globalResult.Items, perPage), nil
}

func searchUsers(ctx context.Context, client *github.Client, query string, perPage int) (*models.SearchUsersResult, error) {
	result, _, err := client.Search.Users(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	items := make([]*models.SearchUser, 0, len(result.Users))
	for _, user := range result.Users {
		items = append(items, &models.SearchUser{
			ID:        user.GetID(),
			Login:     user.GetLogin(),
			AvatarURL: user.GetAvatarURL(),
			HTMLURL:   user.GetHTMLURL(),
			Type:      user.GetType(),
		})
	}
	return &models.SearchUsersResult{TotalCount: result.GetTotal(), Items: items}, nil
}

func mergeUserResults(first, second []*models.SearchUser, limit int) *models.SearchUsersResult {
	seen := make(map[string]bool)
	items := make([]*models.SearchUser, 0, limit)
	for _, list := range [][]*models.SearchUser{first, second} {
		for _, user := range list {
			if len(items) == limit {
				break
			}
			key := strings.ToLower(user.Login)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, user)
		}
	}
	return &models.SearchUsersResult{TotalCount: len(items), Items: items}
}

// StarRepo stars a repository for the user
func (s *GitHubAPIService) StarRepo(ctx context.Context, token, owner, repo string) error {
	client, err := s.client(token)
	if err != nil {
		return err
	}
	if _, err := client.Activity.Star(ctx, owner, repo); err != nil {
		return fmt.Errorf("failed to star %s/%s: %w", owner, repo, err)
	}
	return nil
}

// UnstarRepo removes the user's star from a repository
func (s *GitHubAPIService) UnstarRepo(ctx context.Context, token, owner, repo string) error {
	client, err := s.client(token)
	if err != nil {
		return err
	}
	if _, err := client.Activity.Unstar(ctx, owner, repo); err != nil {
		return fmt.Errorf("failed to unstar %s/%s: %w", owner, repo, err)
	}
	return nil
}

// CreateRepo creates a repository owned by the user and returns its full name
func (s *GitHubAPIService) CreateRepo(ctx context.Context, token string, req *models.CreateRepoRequest) (string, error) {
	client, err := s.client(token)
	if err != nil {
		return "", err
	}

	repo := &github.Repository{
		Name:     github.String(strings.TrimSpace(req.Name)),
		Private:  github.Bool(req.Private),
		AutoInit: github.Bool(req.AutoInit),
	}
	if req.Description != "" {
		repo.Description = github.String(req.Description)
	}
	if req.GitignoreTemplate != "" {
		repo.GitignoreTemplate = github.String(req.GitignoreTemplate)
	}
	if req.LicenseTemplate != "" {
		repo.LicenseTemplate = github.String(req.LicenseTemplate)
	}

	created, _, err := client.Repositories.Create(ctx, "", repo)
	if err != nil {
		return "", fmt.Errorf("failed to create repository: %w", err)
	}
	return created.GetFullName(), nil
}

// SearchRepoFiles lists up to 15 files whose path contains the query, ignoring case.
// A missing tree yields no matches.
func (s *GitHubAPIService) SearchRepoFiles(ctx context.Context, token, owner, repo, ref, query string) ([]models.FileMatch, error) {
	client, err := s.client(token)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref = "HEAD"
	}

	tree, _, err := client.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		if isNotFound(err) {
			return []models.FileMatch{}, nil
		}
		return nil, fmt.Errorf("failed to read tree of %s/%s: %w", owner, repo, err)
	}

	needle := strings.ToLower(query)
	matches := make([]models.FileMatch, 0, MaxFileMatches)
	for _, entry := range tree.Entries {
		if len(matches) == MaxFileMatches {
			break
		}
		if entry.GetType() != "blob" || entry.GetPath() == "" {
			continue
		}
		if strings.Contains(strings.ToLower(entry.GetPath()), needle) {
			matches = append(matches, models.FileMatch{Path: entry.GetPath()})
		}
	}
	return matches, nil
}

// GetFileContent returns the decoded content of a file, or "" when the path is missing or not a file
func (s *GitHubAPIService) GetFileContent(ctx context.Context, token, owner, repo, path, ref string) (string, error) {
	client, err := s.client(token)
	if err != nil {
		return "", err
	}

	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, _, err := client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if file == nil {
		return "", nil
	}
	return file.GetContent()
}

// FetchFileContentForContext returns file content trimmed for use as chat context, or nil when empty
func (s *GitHubAPIService) FetchFileContentForContext(ctx context.Context, token, owner, repo, path, ref string) (*models.FileContext, error) {
	content, err := s.GetFileContent(ctx, token, owner, repo, path, ref)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, nil
	}
	return &models.FileContext{Filename: path, Content: truncateRunes(content, MaxContextFileChars)}, nil
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

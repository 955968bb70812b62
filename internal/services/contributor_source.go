package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/google/go-github/v57/github"
)

// ContributorSource supplies the roster of one repository
type ContributorSource interface {
	// Name identifies the source in stored snapshots
	Name() string
	FetchRoster(ctx context.Context, owner, repo string) ([]*models.ContributorRecord, error)
}

// SourceFactory builds the contributor source used for a caller's token
type SourceFactory func(token string) ContributorSource

// GitHubSourceFactory returns a factory of GitHub statistics sources
func GitHubSourceFactory(clients ClientFactory) SourceFactory {
	return func(token string) ContributorSource {
		return NewGitHubStatsSource(clients(token))
	}
}

// GitHubStatsSource reads the repository contributor statistics endpoint
type GitHubStatsSource struct {
	client *github.Client
}

func NewGitHubStatsSource(client *github.Client) *GitHubStatsSource {
	return &GitHubStatsSource{client: client}
}

func (s *GitHubStatsSource) Name() string {
	return "github"
}

// FetchRoster returns one record per human contributor.
// GitHub answers 202 while it computes statistics; that surfaces as ErrStatsPending.
func (s *GitHubStatsSource) FetchRoster(ctx context.Context, owner, repo string) ([]*models.ContributorRecord, error) {
	stats, _, err := s.client.Repositories.ListContributorsStats(ctx, owner, repo)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return nil, ErrStatsPending
		}
		return nil, fmt.Errorf("failed to list contributor stats for %s/%s: %w", owner, repo, err)
	}

	roster := make([]*models.ContributorRecord, 0, len(stats))
	for _, stat := range stats {
		author := stat.GetAuthor()
		if author == nil || author.GetLogin() == "" || author.GetType() == "Bot" {
			continue
		}
		roster = append(roster, recordFromStats(author, stat.GetTotal(), stat.Weeks))
	}

	return NormalizeRoster(roster), nil
}

func recordFromStats(author *github.Contributor, total int, weeks []*github.WeeklyStats) *models.ContributorRecord {
	ordered := make([]*github.WeeklyStats, 0, len(weeks))
	for _, week := range weeks {
		if week != nil {
			ordered = append(ordered, week)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].GetWeek().Before(ordered[j].GetWeek().Time)
	})

	record := &models.ContributorRecord{
		Login:              author.GetLogin(),
		AvatarURL:          author.GetAvatarURL(),
		TotalContributions: total,
	}

	monthStart := len(ordered) - models.MonthWeeks
	activityStart := len(ordered) - models.ActivityWeeks
	if activityStart < 0 {
		activityStart = 0
	}
	record.WeeklyCommits = make([]int, 0, len(ordered)-activityStart)

	for i, week := range ordered {
		record.TotalAdditions += week.GetAdditions()
		record.TotalDeletions += week.GetDeletions()
		if i >= monthStart {
			record.MonthAdditions += week.GetAdditions()
			record.MonthDeletions += week.GetDeletions()
		}
		if i >= activityStart {
			record.WeeklyCommits = append(record.WeeklyCommits, week.GetCommits())
		}
	}

	return record
}

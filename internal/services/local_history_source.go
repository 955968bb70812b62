package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	week               = 7 * 24 * time.Hour
	noreplyEmailSuffix = "@users.noreply.github.com"
)

// LocalHistorySource builds a roster from the commit history of a local clone
type LocalHistorySource struct {
	path string
	now  func() time.Time
}

func NewLocalHistorySource(path string) *LocalHistorySource {
	return &LocalHistorySource{
		path: path,
		now:  time.Now,
	}
}

// WithReferenceTime pins the end of the newest weekly bucket
func (s *LocalHistorySource) WithReferenceTime(ref time.Time) *LocalHistorySource {
	s.now = func() time.Time { return ref }
	return s
}

func (s *LocalHistorySource) Name() string {
	return "local"
}

// FetchRoster walks HEAD's history. Owner and repo only label errors; the clone path decides the data.
func (s *LocalHistorySource) FetchRoster(ctx context.Context, owner, repo string) ([]*models.ContributorRecord, error) {
	repository, err := git.PlainOpen(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s at %s: %w", owner, repo, s.path, err)
	}

	head, err := repository.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []*models.ContributorRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	logIter, err := repository.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	defer logIter.Close()

	ref := s.now()
	byLogin := make(map[string]*models.ContributorRecord)
	var roster []*models.ContributorRecord

	err = logIter.ForEach(func(c *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		login := loginFromSignature(c.Author)
		if login == "" {
			return nil
		}

		key := strings.ToLower(login)
		record, ok := byLogin[key]
		if !ok {
			record = &models.ContributorRecord{
				Login:         login,
				WeeklyCommits: make([]int, models.ActivityWeeks),
			}
			byLogin[key] = record
			roster = append(roster, record)
		}

		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("failed to diff commit %s: %w", c.Hash, err)
		}
		additions, deletions := 0, 0
		for _, stat := range stats {
			additions += stat.Addition
			deletions += stat.Deletion
		}

		record.TotalContributions++
		record.TotalAdditions += additions
		record.TotalDeletions += deletions

		bucket := weekBucket(ref, c.Author.When)
		if bucket < 0 {
			return nil
		}
		record.WeeklyCommits[bucket]++
		if bucket >= models.ActivityWeeks-models.MonthWeeks {
			record.MonthAdditions += additions
			record.MonthDeletions += deletions
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if roster == nil {
		roster = []*models.ContributorRecord{}
	}
	return roster, nil
}

// weekBucket maps a commit time onto the activity series, oldest bucket first.
// Commits after ref count toward the newest week; commits older than the series return -1.
func weekBucket(ref, when time.Time) int {
	age := ref.Sub(when)
	if age < 0 {
		age = 0
	}
	weeksAgo := int(age / week)
	if weeksAgo >= models.ActivityWeeks {
		return -1
	}
	return models.ActivityWeeks - 1 - weeksAgo
}

// loginFromSignature derives a GitHub-style login from a commit author.
// GitHub noreply addresses carry the login after the numeric id.
func loginFromSignature(sig object.Signature) string {
	email := strings.TrimSpace(sig.Email)
	if strings.HasSuffix(strings.ToLower(email), noreplyEmailSuffix) {
		local := email[:len(email)-len(noreplyEmailSuffix)]
		if _, login, found := strings.Cut(local, "+"); found {
			return login
		}
		return local
	}
	if local, _, found := strings.Cut(email, "@"); found && local != "" {
		return local
	}
	return strings.Join(strings.Fields(sig.Name), "")
}

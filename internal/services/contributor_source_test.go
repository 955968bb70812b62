package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsWeeksJSON(count int) string {
	base := int64(1700000000)
	weeks := make([]string, 0, count)
	// newest first so the source has to order them
	for i := count - 1; i >= 0; i-- {
		weeks = append(weeks, fmt.Sprintf(`{"w":%d,"a":%d,"d":%d,"c":%d}`, base+int64(i)*604800, i*10, i, i))
	}
	return "[" + strings.Join(weeks, ",") + "]"
}

func TestGitHubStatsSource(t *testing.T) {
	t.Run("Maps contributor statistics", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `[
				{"author":{"login":"alice","avatar_url":"https://avatars/alice","type":"User"},"total":91,"weeks":%s},
				{"author":{"login":"dependabot[bot]","type":"Bot"},"total":3,"weeks":[]},
				{"author":null,"total":1,"weeks":[]},
				{"author":{"login":"bob","type":"User"},"total":2,"weeks":[{"w":1700000000,"a":1,"d":0,"c":2}]}
			]`, statsWeeksJSON(14))
		})

		source := NewGitHubStatsSource(testClients(t, mux)("token"))
		roster, err := source.FetchRoster(context.Background(), "acme", "widget")
		require.NoError(t, err)
		require.Len(t, roster, 2)

		alice := roster[0]
		assert.Equal(t, "alice", alice.Login)
		assert.Equal(t, "https://avatars/alice", alice.AvatarURL)
		assert.Equal(t, 91, alice.TotalContributions)
		assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, alice.WeeklyCommits)
		assert.Equal(t, 910, alice.TotalAdditions)
		assert.Equal(t, 91, alice.TotalDeletions)
		assert.Equal(t, 460, alice.MonthAdditions)
		assert.Equal(t, 46, alice.MonthDeletions)

		bob := roster[1]
		assert.Equal(t, []int{2}, bob.WeeklyCommits)
		assert.Equal(t, 1, bob.MonthAdditions)
	})

	t.Run("Accepted response means pending", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{}`)
		})

		source := NewGitHubStatsSource(testClients(t, mux)("token"))
		_, err := source.FetchRoster(context.Background(), "acme", "widget")
		assert.ErrorIs(t, err, ErrStatsPending)
	})

	t.Run("Upstream errors are wrapped", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		})

		source := NewGitHubStatsSource(testClients(t, mux)("token"))
		_, err := source.FetchRoster(context.Background(), "acme", "widget")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrStatsPending)
		assert.Contains(t, err.Error(), "acme/widget")
	})
}

func commitAs(t *testing.T, repo *git.Repository, repoPath, filename, content, email string, when time.Time) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(repoPath, filename), []byte(content), 0644))

	w, err := repo.Worktree()
	require.NoError(t, err)

	_, err = w.Add(filename)
	require.NoError(t, err)

	_, err = w.Commit("update "+filename, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: email,
			When:  when,
		},
	})
	require.NoError(t, err)
}

func TestLocalHistorySource(t *testing.T) {
	ref := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	t.Run("Aggregates commits per author", func(t *testing.T) {
		repoPath := t.TempDir()
		repo, err := git.PlainInit(repoPath, false)
		require.NoError(t, err)

		commitAs(t, repo, repoPath, "b.txt", "x\n", "bob@example.com", ref.Add(-100*day))
		commitAs(t, repo, repoPath, "a.txt", "one\ntwo\n", "Alice@example.com", ref.Add(-20*day))
		commitAs(t, repo, repoPath, "a.txt", "one\n", "1+alice@users.noreply.github.com", ref.Add(-1*day))

		source := NewLocalHistorySource(repoPath).WithReferenceTime(ref)
		roster, err := source.FetchRoster(context.Background(), "acme", "widget")
		require.NoError(t, err)
		require.Len(t, roster, 2)

		alice := roster[0]
		assert.Equal(t, "alice", alice.Login)
		assert.Equal(t, 2, alice.TotalContributions)
		assert.Equal(t, 2, alice.TotalAdditions)
		assert.Equal(t, 1, alice.TotalDeletions)
		assert.Equal(t, 2, alice.MonthAdditions)
		assert.Equal(t, 1, alice.MonthDeletions)
		assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1}, alice.WeeklyCommits)

		bob := roster[1]
		assert.Equal(t, "bob", bob.Login)
		assert.Equal(t, 1, bob.TotalContributions)
		assert.Equal(t, make([]int, models.ActivityWeeks), bob.WeeklyCommits)
		assert.Zero(t, bob.MonthAdditions)
	})

	t.Run("Empty repository", func(t *testing.T) {
		repoPath := t.TempDir()
		_, err := git.PlainInit(repoPath, false)
		require.NoError(t, err)

		roster, err := NewLocalHistorySource(repoPath).FetchRoster(context.Background(), "acme", "widget")
		require.NoError(t, err)
		assert.Empty(t, roster)
	})

	t.Run("Not a repository", func(t *testing.T) {
		_, err := NewLocalHistorySource(t.TempDir()).FetchRoster(context.Background(), "acme", "widget")
		assert.Error(t, err)
	})
}

func TestWeekBucket(t *testing.T) {
	ref := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		when     time.Time
		expected int
	}{
		{"Now", ref, 11},
		{"Future", ref.Add(time.Hour), 11},
		{"Six days ago", ref.Add(-6 * 24 * time.Hour), 11},
		{"Seven days ago", ref.Add(-7 * 24 * time.Hour), 10},
		{"Oldest week", ref.Add(-83 * 24 * time.Hour), 0},
		{"Outside series", ref.Add(-84 * 24 * time.Hour), -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, weekBucket(ref, tc.when))
		})
	}
}

func TestLoginFromSignature(t *testing.T) {
	testCases := []struct {
		email    string
		name     string
		expected string
	}{
		{"12345+octocat@users.noreply.github.com", "The Octocat", "octocat"},
		{"octocat@users.noreply.github.com", "", "octocat"},
		{"mona@example.com", "Mona", "mona"},
		{"", "Mona Lisa", "MonaLisa"},
		{"", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, loginFromSignature(object.Signature{Name: tc.name, Email: tc.email}))
		})
	}
}

func TestParseRoster(t *testing.T) {
	t.Run("List document", func(t *testing.T) {
		roster, err := ParseRoster([]byte(`
- login: alice
  total_contributions: 50
  weekly_commits: [0, 0, 0, 0, 5, 3, 2, 1]
- login: bob
  total_contributions: 8
- login: Alice
  total_contributions: 1
`), "acme/widget")
		require.NoError(t, err)
		require.Len(t, roster, 2)
		assert.Equal(t, []int{0, 0, 0, 0, 5, 3, 2, 1}, roster[0].WeeklyCommits)
		assert.Equal(t, 50, roster[0].TotalContributions)
	})

	t.Run("Mapping by repository accepts JSON", func(t *testing.T) {
		roster, err := ParseRoster([]byte(`{"Acme/Widget": [{"login": "carol", "total_contributions": 3}]}`), "acme/widget")
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, "carol", roster[0].Login)
	})

	t.Run("Missing repository", func(t *testing.T) {
		_, err := ParseRoster([]byte(`other/repo: []`), "acme/widget")
		assert.Error(t, err)
	})

	t.Run("Invalid record", func(t *testing.T) {
		_, err := ParseRoster([]byte(`[{"login": "dave", "total_contributions": -1}]`), "acme/widget")
		assert.Error(t, err)
	})

	t.Run("Empty document", func(t *testing.T) {
		roster, err := ParseRoster([]byte(""), "acme/widget")
		require.NoError(t, err)
		assert.Empty(t, roster)
	})
}

func TestRosterFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("acme/widget:\n  - login: alice\n"), 0644))

	source := NewRosterFileSource(path)
	assert.Equal(t, "file", source.Name())

	roster, err := source.FetchRoster(context.Background(), "acme", "widget")
	require.NoError(t, err)
	assert.Equal(t, "alice", roster[0].Login)

	_, err = NewRosterFileSource(filepath.Join(t.TempDir(), "missing.yaml")).FetchRoster(context.Background(), "acme", "widget")
	assert.Error(t, err)
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// statsPayload renders a contributor stats response with four recent weeks per author
func statsPayload(commits map[string][]int) string {
	start := time.Now().UTC().Add(-4 * 7 * 24 * time.Hour).Truncate(24 * time.Hour)
	var authors []map[string]interface{}
	for login, weekly := range commits {
		total := 0
		var weeks []map[string]int64
		for i, c := range weekly {
			total += c
			weeks = append(weeks, map[string]int64{
				"w": start.Add(time.Duration(i) * 7 * 24 * time.Hour).Unix(),
				"a": int64(c * 10),
				"d": int64(c),
				"c": int64(c),
			})
		}
		authors = append(authors, map[string]interface{}{
			"author": map[string]string{"login": login, "type": "User"},
			"total":  total,
			"weeks":  weeks,
		})
	}
	data, _ := json.Marshal(authors)
	return string(data)
}

func TestPeopleView(t *testing.T) {
	t.Run("Ranks the roster", func(t *testing.T) {
		f := newFixture(t)
		f.github.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, statsPayload(map[string][]int{
				"alice": {1, 1, 1, 1},
				"bob":   {5, 5, 5, 5},
				"carol": {0, 0, 2, 2},
				"dave":  {0, 0, 0, 1},
			}))
		})

		w := f.do(http.MethodGet, "/api/repos/acme/widget/people", "", true)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Count        int    `json:"count"`
			CountLabel   string `json:"count_label"`
			Source       string `json:"source"`
			SortMode     string `json:"sort_mode"`
			NextSortMode string `json:"next_sort_mode"`
			Podium       []struct {
				Login string `json:"login"`
				Rank  int    `json:"rank"`
			} `json:"podium"`
			Contributors []struct {
				Login string `json:"login"`
				Rank  int    `json:"rank"`
			} `json:"contributors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		assert.Equal(t, 4, body.Count)
		assert.Equal(t, "4 contributors", body.CountLabel)
		assert.Equal(t, "github", body.Source)
		assert.Equal(t, "contributions", body.SortMode)
		assert.Equal(t, "total", body.NextSortMode)
		require.Len(t, body.Podium, 3)
		assert.Equal(t, "bob", body.Podium[0].Login)
		assert.Equal(t, 1, body.Podium[0].Rank)
		require.Len(t, body.Contributors, 1)
		assert.Equal(t, "dave", body.Contributors[0].Login)
		assert.Equal(t, 4, body.Contributors[0].Rank)
	})

	t.Run("Query disables the podium", func(t *testing.T) {
		f := newFixture(t)
		f.github.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, statsPayload(map[string][]int{"alice": {1}, "bob": {2}, "carol": {3}}))
		})

		w := f.do(http.MethodGet, "/api/repos/acme/widget/people?q=AL&sort=alpha", "", true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(mustField(t, w.Body.Bytes(), "podium")))
		assert.Contains(t, w.Body.String(), `"count_label":"1 contributor"`)
	})

	t.Run("Pending statistics", func(t *testing.T) {
		f := newFixture(t)
		f.github.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{}`)
		})

		w := f.do(http.MethodGet, "/api/repos/acme/widget/people", "", true)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"status":"pending"}`, w.Body.String())

		var count int
		require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM jobs WHERE repo_full_name = 'acme/widget'`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("Missing repository", func(t *testing.T) {
		f := newFixture(t)
		f.github.HandleFunc("/repos/acme/gone/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		})

		w := f.do(http.MethodGet, "/api/repos/acme/gone/people", "", true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Requires a session", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/repos/acme/widget/people", "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func mustField(t *testing.T, data []byte, field string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields[field]
}

func TestPeopleExport(t *testing.T) {
	f := newFixture(t)
	f.github.HandleFunc("/repos/acme/widget/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPayload(map[string][]int{"alice": {1, 2}, "bob": {3, 4}}))
	})

	w := f.do(http.MethodGet, "/api/repos/acme/widget/people/export?sort=total", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="acme-widget-people-total.xlsx"`, w.Header().Get("Content-Disposition"))

	file, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows("Contributors")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "bob", rows[1][1])
	assert.Equal(t, "alice", rows[2][1])
}

func TestPeopleRefresh(t *testing.T) {
	f := newFixture(t)

	first := f.do(http.MethodPost, "/api/repos/Acme/Widget/people/refresh", "", true)
	require.Equal(t, http.StatusAccepted, first.Code)
	second := f.do(http.MethodPost, "/api/repos/acme/widget/people/refresh", "", true)
	require.Equal(t, http.StatusAccepted, second.Code)

	assert.Equal(t, mustField(t, first.Body.Bytes(), "job_id"), mustField(t, second.Body.Bytes(), "job_id"))
	assert.JSONEq(t, `"pending"`, string(mustField(t, first.Body.Bytes(), "status")))
}

func TestPeopleForcedRefresh(t *testing.T) {
	f := newFixture(t)
	snapshots := repositories.NewContributorSnapshotRepository(f.db)
	require.NoError(t, snapshots.Upsert(&models.ContributorSnapshot{
		RepoFullName: "acme/widget",
		Source:       "github",
		Roster:       []*models.ContributorRecord{{Login: "alice"}},
		FetchedAt:    time.Now().UTC(),
	}))

	w := f.do(http.MethodPost, "/api/repos/acme/widget/people/refresh", "", true)
	require.Equal(t, http.StatusAccepted, w.Code)
	_, err := snapshots.GetByRepo("acme/widget")
	require.NoError(t, err, "plain refresh keeps the cached roster")

	w = f.do(http.MethodPost, "/api/repos/acme/widget/people/refresh?force=true", "", true)
	require.Equal(t, http.StatusAccepted, w.Code)
	_, err = snapshots.GetByRepo("acme/widget")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

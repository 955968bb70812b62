package services

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alimgiray/better-github/pkg/database"
	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"
)

// testClients points every GitHub client at a local test server
func testClients(t *testing.T, handler http.Handler) ClientFactory {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	return func(token string) *github.Client {
		client := github.NewClient(nil)
		client.BaseURL = baseURL
		return client
	}
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

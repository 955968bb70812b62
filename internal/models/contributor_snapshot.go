package models

import (
	"strings"
	"time"
)

// ContributorSnapshot is a cached roster for one repository
type ContributorSnapshot struct {
	RepoFullName string               `json:"repo_full_name"`
	Source       string               `json:"source"`
	Roster       []*ContributorRecord `json:"roster"`
	FetchedAt    time.Time            `json:"fetched_at"`
}

// IsFresh reports whether the snapshot is younger than ttl at now
func (s *ContributorSnapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.FetchedAt) < ttl
}

// RepoFullName joins owner and repository into the canonical lowercase "owner/repo" key
func RepoFullName(owner, repo string) string {
	return strings.ToLower(owner + "/" + repo)
}

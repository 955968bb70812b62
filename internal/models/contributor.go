package models

import "strings"

// MonthWeeks is the number of most recent weekly buckets that make up "this month"
const MonthWeeks = 4

// ActivityWeeks is the length of the weekly commit series supplied by contributor sources
const ActivityWeeks = 12

// ContributorRecord holds the precomputed statistics of one contributor in a repository.
// Records are treated as immutable values once fetched.
type ContributorRecord struct {
	Login              string `json:"login" yaml:"login"`
	AvatarURL          string `json:"avatar_url" yaml:"avatar_url"`
	TotalContributions int    `json:"total_contributions" yaml:"total_contributions"`
	WeeklyCommits      []int  `json:"weekly_commits" yaml:"weekly_commits"`
	TotalAdditions     int    `json:"total_additions" yaml:"total_additions"`
	TotalDeletions     int    `json:"total_deletions" yaml:"total_deletions"`
	MonthAdditions     int    `json:"month_additions" yaml:"month_additions"`
	MonthDeletions     int    `json:"month_deletions" yaml:"month_deletions"`
}

// Key returns the canonical identity of the contributor
func (c *ContributorRecord) Key() string {
	return strings.ToLower(c.Login)
}

// Validate checks the record shape
func (c *ContributorRecord) Validate() error {
	if strings.TrimSpace(c.Login) == "" {
		return &ValidationError{Field: "login", Message: "login is required"}
	}
	if c.TotalContributions < 0 || c.TotalAdditions < 0 || c.TotalDeletions < 0 ||
		c.MonthAdditions < 0 || c.MonthDeletions < 0 {
		return &ValidationError{Field: c.Login, Message: "contributor counts cannot be negative"}
	}
	for _, commits := range c.WeeklyCommits {
		if commits < 0 {
			return &ValidationError{Field: c.Login, Message: "weekly commits cannot be negative"}
		}
	}
	return nil
}

// ValidationError describes an invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

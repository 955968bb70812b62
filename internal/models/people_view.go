package models

import "strings"

// SortMode selects the ordering of the people view
type SortMode string

const (
	SortByContributions SortMode = "contributions"
	SortByTotal         SortMode = "total"
	SortAlphabetical    SortMode = "alpha"
)

// SortCycle is the order the sort control steps through
var SortCycle = []SortMode{SortByContributions, SortByTotal, SortAlphabetical}

var sortLabels = map[SortMode]string{
	SortByContributions: "This month",
	SortByTotal:         "All-time total",
	SortAlphabetical:    "A → Z",
}

// ParseSortMode maps user input onto a sort mode; anything unknown selects the default
func ParseSortMode(value string) SortMode {
	mode := SortMode(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := sortLabels[mode]; ok {
		return mode
	}
	return SortByContributions
}

// Next returns the mode that follows m in the sort cycle
func (m SortMode) Next() SortMode {
	for i, mode := range SortCycle {
		if mode == m {
			return SortCycle[(i+1)%len(SortCycle)]
		}
	}
	return SortByContributions
}

// Label returns the display label of the sort mode
func (m SortMode) Label() string {
	if label, ok := sortLabels[m]; ok {
		return label
	}
	return sortLabels[SortByContributions]
}

// IsMonthly reports whether the mode ranks by this month's activity
func (m SortMode) IsMonthly() bool {
	return m == SortByContributions
}

// SparkBar is one weekly bar of a contributor sparkline.
// Fraction is the bar height relative to the tallest week, in [0, 1].
type SparkBar struct {
	Commits  int     `json:"commits"`
	Fraction float64 `json:"fraction"`
	Active   bool    `json:"active"`
}

// ContributorCard carries the display-ready stats of one contributor
type ContributorCard struct {
	Login       string     `json:"login"`
	AvatarURL   string     `json:"avatar_url"`
	ProfilePath string     `json:"profile_path"`
	Rank        int        `json:"rank"`
	Commits     int        `json:"commits"`
	Additions   int        `json:"additions"`
	Deletions   int        `json:"deletions"`
	ShowDiff    bool       `json:"show_diff"`
	BarValue    int        `json:"bar_value"`
	BarMax      int        `json:"bar_max"`
	BarPercent  float64    `json:"bar_percent"`
	Sparkline   []SparkBar `json:"sparkline"`
}

// PeopleView is the ranked, filtered roster handed to the render layer
type PeopleView struct {
	Owner        string            `json:"owner"`
	Repo         string            `json:"repo"`
	Query        string            `json:"query"`
	SortMode     SortMode          `json:"sort_mode"`
	SortLabel    string            `json:"sort_label"`
	NextSortMode SortMode          `json:"next_sort_mode"`
	Count        int               `json:"count"`
	CountLabel   string            `json:"count_label"`
	EmptyMessage string            `json:"empty_message,omitempty"`
	Podium       []ContributorCard `json:"podium"`
	Contributors []ContributorCard `json:"contributors"`
}

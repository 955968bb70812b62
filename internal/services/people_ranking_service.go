package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alimgiray/better-github/internal/models"
)

// PodiumSize is the number of contributors shown on the podium
const PodiumSize = 3

// PeopleRankingService ranks a repository roster for the people view.
// It holds no state; every result is a pure function of its inputs.
type PeopleRankingService struct{}

func NewPeopleRankingService() *PeopleRankingService {
	return &PeopleRankingService{}
}

// NormalizeRoster drops nil records and logins that repeat under case-insensitive
// comparison, keeping the first occurrence. The input slice is not modified.
func NormalizeRoster(roster []*models.ContributorRecord) []*models.ContributorRecord {
	seen := make(map[string]bool, len(roster))
	result := make([]*models.ContributorRecord, 0, len(roster))
	for _, contributor := range roster {
		if contributor == nil {
			continue
		}
		key := contributor.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, contributor)
	}
	return result
}

// ComputeMonthlyTotals sums the last four weekly commit counts of every contributor,
// keyed by lowercase login. Shorter series are summed as they are.
func (s *PeopleRankingService) ComputeMonthlyTotals(roster []*models.ContributorRecord) map[string]int {
	totals := make(map[string]int, len(roster))
	for _, contributor := range roster {
		if contributor == nil {
			continue
		}
		key := contributor.Key()
		if _, exists := totals[key]; exists {
			continue
		}
		totals[key] = monthlyTotal(contributor.WeeklyCommits)
	}
	return totals
}

func monthlyTotal(weekly []int) int {
	start := len(weekly) - models.MonthWeeks
	if start < 0 {
		start = 0
	}
	total := 0
	for _, commits := range weekly[start:] {
		total += commits
	}
	return total
}

// ComputeRanks returns the 1-based position of every contributor when the roster is
// ordered by monthly total descending, ties keeping input order.
func (s *PeopleRankingService) ComputeRanks(roster []*models.ContributorRecord, monthlyTotals map[string]int) map[string]int {
	ordered := make([]*models.ContributorRecord, 0, len(roster))
	for _, contributor := range roster {
		if contributor != nil {
			ordered = append(ordered, contributor)
		}
	}
	sortByMonthly(ordered, monthlyTotals)

	ranks := make(map[string]int, len(ordered))
	for i, contributor := range ordered {
		key := contributor.Key()
		if _, exists := ranks[key]; exists {
			continue
		}
		ranks[key] = i + 1
	}
	return ranks
}

// FilterAndSort keeps contributors whose login contains the trimmed query
// (case-insensitive) and orders them by the sort mode. Logins repeated under
// case-insensitive comparison keep their first occurrence. The result is a new slice.
func (s *PeopleRankingService) FilterAndSort(roster []*models.ContributorRecord, query string, mode models.SortMode, monthlyTotals map[string]int) []*models.ContributorRecord {
	needle := strings.ToLower(strings.TrimSpace(query))

	seen := make(map[string]bool, len(roster))
	list := make([]*models.ContributorRecord, 0, len(roster))
	for _, contributor := range roster {
		if contributor == nil || seen[contributor.Key()] {
			continue
		}
		seen[contributor.Key()] = true
		if needle != "" && !strings.Contains(contributor.Key(), needle) {
			continue
		}
		list = append(list, contributor)
	}

	switch mode {
	case models.SortByTotal:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].TotalContributions > list[j].TotalContributions
		})
	case models.SortAlphabetical:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Key() < list[j].Key()
		})
	default:
		sortByMonthly(list, monthlyTotals)
	}

	return list
}

func sortByMonthly(list []*models.ContributorRecord, monthlyTotals map[string]int) {
	sort.SliceStable(list, func(i, j int) bool {
		return monthlyTotals[list[i].Key()] > monthlyTotals[list[j].Key()]
	})
}

// IsQueryActive reports whether a filter query restricts the roster
func IsQueryActive(query string) bool {
	return strings.TrimSpace(query) != ""
}

// SelectPodium splits the ordered contributors into the podium and the rest.
// The podium is only filled for the unfiltered monthly view of a roster of at least three.
func (s *PeopleRankingService) SelectPodium(ordered []*models.ContributorRecord, mode models.SortMode, queryActive bool, rosterSize int) ([]*models.ContributorRecord, []*models.ContributorRecord) {
	if queryActive || mode != models.SortByContributions || rosterSize < PodiumSize || len(ordered) < PodiumSize {
		return []*models.ContributorRecord{}, ordered
	}
	return ordered[:PodiumSize:PodiumSize], ordered[PodiumSize:]
}

// ContributorStats are the sort-aware numbers shown for one contributor
type ContributorStats struct {
	Commits   int
	Additions int
	Deletions int
	BarValue  int
	BarMax    int
}

// rosterMaxima holds the bar denominators of one roster, each clamped to at least 1
type rosterMaxima struct {
	monthly int
	total   int
}

func computeMaxima(roster []*models.ContributorRecord, monthlyTotals map[string]int) rosterMaxima {
	maxima := rosterMaxima{monthly: 1, total: 1}
	for _, commits := range monthlyTotals {
		if commits > maxima.monthly {
			maxima.monthly = commits
		}
	}
	for _, contributor := range roster {
		if contributor != nil && contributor.TotalContributions > maxima.total {
			maxima.total = contributor.TotalContributions
		}
	}
	return maxima
}

func (m rosterMaxima) stats(contributor *models.ContributorRecord, mode models.SortMode, monthlyTotals map[string]int) ContributorStats {
	if mode.IsMonthly() {
		monthly := monthlyTotals[contributor.Key()]
		return ContributorStats{
			Commits:   monthly,
			Additions: contributor.MonthAdditions,
			Deletions: contributor.MonthDeletions,
			BarValue:  monthly,
			BarMax:    m.monthly,
		}
	}
	return ContributorStats{
		Commits:   contributor.TotalContributions,
		Additions: contributor.TotalAdditions,
		Deletions: contributor.TotalDeletions,
		BarValue:  contributor.TotalContributions,
		BarMax:    m.total,
	}
}

// Stats returns the display stats of one contributor within its roster
func (s *PeopleRankingService) Stats(roster []*models.ContributorRecord, contributor *models.ContributorRecord, mode models.SortMode) ContributorStats {
	totals := s.ComputeMonthlyTotals(roster)
	return computeMaxima(roster, totals).stats(contributor, mode, totals)
}

// BarPercent converts a bar value into a width percentage
func BarPercent(value, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(value) / float64(max) * 100
}

// Sparkline scales a weekly commit series against its busiest week.
// An empty or idle series yields a flat baseline of zero-height bars.
func Sparkline(weekly []int) []models.SparkBar {
	max := 0
	for _, commits := range weekly {
		if commits > max {
			max = commits
		}
	}
	if max == 0 {
		return make([]models.SparkBar, models.ActivityWeeks)
	}

	bars := make([]models.SparkBar, len(weekly))
	for i, commits := range weekly {
		bars[i] = models.SparkBar{
			Commits:  commits,
			Fraction: float64(commits) / float64(max),
			Active:   commits > 0,
		}
	}
	return bars
}

// BuildView ranks, filters and sorts the roster and derives every card of the people view
func (s *PeopleRankingService) BuildView(owner, repo string, roster []*models.ContributorRecord, query string, mode models.SortMode) *models.PeopleView {
	roster = NormalizeRoster(roster)
	mode = models.ParseSortMode(string(mode))

	totals := s.ComputeMonthlyTotals(roster)
	ranks := s.ComputeRanks(roster, totals)
	ordered := s.FilterAndSort(roster, query, mode, totals)
	podium, rest := s.SelectPodium(ordered, mode, IsQueryActive(query), len(roster))
	maxima := computeMaxima(roster, totals)

	view := &models.PeopleView{
		Owner:        owner,
		Repo:         repo,
		Query:        query,
		SortMode:     mode,
		SortLabel:    mode.Label(),
		NextSortMode: mode.Next(),
		Count:        len(ordered),
		CountLabel:   countLabel(len(ordered)),
		Podium:       make([]models.ContributorCard, 0, len(podium)),
		Contributors: make([]models.ContributorCard, 0, len(rest)),
	}
	if len(ordered) == 0 {
		view.EmptyMessage = "No members found"
	}

	for i, contributor := range podium {
		view.Podium = append(view.Podium, s.card(owner, repo, contributor, i+1, maxima.stats(contributor, mode, totals)))
	}
	for _, contributor := range rest {
		view.Contributors = append(view.Contributors, s.card(owner, repo, contributor, ranks[contributor.Key()], maxima.stats(contributor, mode, totals)))
	}

	return view
}

func (s *PeopleRankingService) card(owner, repo string, contributor *models.ContributorRecord, rank int, stats ContributorStats) models.ContributorCard {
	return models.ContributorCard{
		Login:       contributor.Login,
		AvatarURL:   contributor.AvatarURL,
		ProfilePath: fmt.Sprintf("/repos/%s/%s/people/%s", owner, repo, contributor.Login),
		Rank:        rank,
		Commits:     stats.Commits,
		Additions:   stats.Additions,
		Deletions:   stats.Deletions,
		ShowDiff:    stats.Additions != 0 || stats.Deletions != 0,
		BarValue:    stats.BarValue,
		BarMax:      stats.BarMax,
		BarPercent:  BarPercent(stats.BarValue, stats.BarMax),
		Sparkline:   Sparkline(contributor.WeeklyCommits),
	}
}

func countLabel(count int) string {
	if count == 1 {
		return "1 contributor"
	}
	return fmt.Sprintf("%d contributors", count)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/services"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"
)

// rankResult is the outcome for one repository; Pending is set while GitHub computes statistics
type rankResult struct {
	View    *models.PeopleView
	Source  string
	Pending bool
}

func runRank(c *cli.Context) error {
	repos := c.Args().Slice()
	if len(repos) == 0 {
		return errors.New("at least one owner/repo is required")
	}

	names := make([][2]string, len(repos))
	for i, fullName := range repos {
		owner, repo, ok := strings.Cut(fullName, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return fmt.Errorf("invalid repository %q, expected owner/repo", fullName)
		}
		names[i] = [2]string{owner, repo}
	}

	source := selectSource(c)
	mode := models.ParseSortMode(c.String("sort"))
	query := c.String("query")

	results, err := fetchViews(c.Context, source, names, mode, query, c.Int("concurrency"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, result := range results {
		renderResult(c.App.Writer, result)
	}
	return nil
}

// selectSource picks the roster source from the flags; a file wins over a local clone
func selectSource(c *cli.Context) services.ContributorSource {
	switch {
	case c.String("file") != "":
		return services.NewRosterFileSource(c.String("file"))
	case c.String("local") != "":
		return services.NewLocalHistorySource(c.String("local"))
	default:
		return services.NewGitHubStatsSource(services.NewGitHubClient(c.String("token")))
	}
}

// fetchViews loads every repository concurrently and ranks it. Results keep the argument order.
func fetchViews(ctx context.Context, source services.ContributorSource, names [][2]string, mode models.SortMode, query string, concurrency int) ([]*rankResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	ranking := services.NewPeopleRankingService()
	results := make([]*rankResult, len(names))

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(concurrency)
	for i, name := range names {
		p.Go(func(ctx context.Context) error {
			owner, repo := name[0], name[1]
			logger.WithField("repo", owner+"/"+repo).Info("Fetching contributors")

			roster, err := source.FetchRoster(ctx, owner, repo)
			if errors.Is(err, services.ErrStatsPending) {
				results[i] = &rankResult{
					View:    &models.PeopleView{Owner: owner, Repo: repo},
					Source:  source.Name(),
					Pending: true,
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s/%s: %w", owner, repo, err)
			}

			results[i] = &rankResult{
				View:   ranking.BuildView(owner, repo, roster, query, mode),
				Source: source.Name(),
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkline draws weekly bars as block characters, idle weeks on the baseline
func sparkline(bars []models.SparkBar) string {
	var b strings.Builder
	for _, bar := range bars {
		level := int(bar.Fraction * float64(len(sparkLevels)-1))
		if level < 0 {
			level = 0
		}
		if level >= len(sparkLevels) {
			level = len(sparkLevels) - 1
		}
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}

func renderResult(w io.Writer, result *rankResult) {
	view := result.View
	title := fmt.Sprintf("%s/%s", view.Owner, view.Repo)
	color.New(color.Bold).Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))

	if result.Pending {
		color.New(color.FgYellow).Fprintln(w, "Contributor statistics are being computed, try again shortly.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "%s · %s · sorted by %s\n\n", view.CountLabel, result.Source, view.SortLabel)
	if view.EmptyMessage != "" {
		fmt.Fprintln(w, view.EmptyMessage)
		fmt.Fprintln(w)
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header([]string{"Rank", "Login", "Commits", "Changes", "Share", "Activity"})
	podiumColor := color.New(color.FgYellow, color.Bold)
	for _, card := range view.Podium {
		table.Append(cardRow(card, podiumColor.Sprint(card.Login)))
	}
	for _, card := range view.Contributors {
		table.Append(cardRow(card, card.Login))
	}
	table.Render()
	fmt.Fprintln(w)
}

func cardRow(card models.ContributorCard, login string) []string {
	changes := ""
	if card.ShowDiff {
		changes = color.GreenString("+%d", card.Additions) + " " + color.RedString("-%d", card.Deletions)
	}
	return []string{
		fmt.Sprintf("#%d", card.Rank),
		login,
		fmt.Sprintf("%d", card.Commits),
		changes,
		fmt.Sprintf("%.1f%%", card.BarPercent),
		sparkline(card.Sparkline),
	}
}

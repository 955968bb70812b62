package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/pkg/logger"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "people",
		Usage:   "Rank the contributors of GitHub repositories",
		Version: version,
		Before: func(c *cli.Context) error {
			logger.Init()
			logger.SetOutput(c.App.ErrWriter)
			if !c.Bool("verbose") {
				logger.GetLogger().SetLevel(logrus.WarnLevel)
			}
			return nil
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log progress to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "rank",
				Usage:     "Print the contributor leaderboard of one or more repositories",
				ArgsUsage: "<owner/repo> [owner/repo...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "sort",
						Aliases: []string{"s"},
						Value:   string(models.SortByContributions),
						Usage:   "Sort mode: contributions, total, alpha",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only show logins containing this text",
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "GitHub token",
						EnvVars: []string{"GITHUB_TOKEN"},
					},
					&cli.StringFlag{
						Name:  "local",
						Usage: "Read history from a local clone instead of the GitHub API",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read rosters from a YAML or JSON file",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Value: 4,
						Usage: "Repositories fetched at once",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the views as JSON",
					},
				},
				Action: runRank,
			},
			{
				Name:      "cycle",
				Usage:     "Print the sort mode that follows the given one",
				ArgsUsage: "<mode>",
				Action: func(c *cli.Context) error {
					next := models.ParseSortMode(c.Args().First()).Next()
					fmt.Fprintf(c.App.Writer, "%s\t%s\n", next, next.Label())
					return nil
				},
			},
		},
	}
}

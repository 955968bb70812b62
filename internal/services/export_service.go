package services

import (
	"fmt"
	"io"
	"math"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/xuri/excelize/v2"
)

const leaderboardSheet = "Contributors"

var leaderboardHeader = []interface{}{"Rank", "Login", "Commits", "Additions", "Deletions", "Bar %"}

// ExportService writes people views as spreadsheets
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// LeaderboardFilename names the export of a repository's people view
func LeaderboardFilename(owner, repo string, mode models.SortMode) string {
	return fmt.Sprintf("%s-%s-people-%s.xlsx", owner, repo, mode)
}

// WriteLeaderboard writes the podium followed by the remaining contributors, in view order
func (s *ExportService) WriteLeaderboard(view *models.PeopleView, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(leaderboardSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(leaderboardSheet, "A1", &leaderboardHeader); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(leaderboardSheet, "A1", "F1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(leaderboardSheet, "B", "B", 28); err != nil {
		return err
	}

	row := 2
	for _, cards := range [][]models.ContributorCard{view.Podium, view.Contributors} {
		for _, card := range cards {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{
				card.Rank,
				card.Login,
				card.Commits,
				card.Additions,
				card.Deletions,
				math.Round(card.BarPercent*10) / 10,
			}
			if err := f.SetSheetRow(leaderboardSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

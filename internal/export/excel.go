package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/linguahub/client/internal/domain/entities"
)

// ProgressSource is the read-only slice of the progress cache the report
// needs.
type ProgressSource interface {
	TopicProgress(topicID string) (*entities.ProgressEntry, bool)
	LevelProgress(levelID string) int
	TotalProgress() int
}

const defaultSheet = "Sheet1"

// WriteReport writes a per-topic progress report for the user to an .xlsx
// file at path. Levels are expected with topics populated (CourseService.Catalog).
func WriteReport(path, sheet string, user *entities.User, levels []*entities.Level, progress ProgressSource) error {
	if sheet == "" {
		sheet = "Progress"
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create report sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 22); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}

	row := 1
	setRow(f, sheet, row, "User", user.Name, user.Email, "Level: "+user.Level, fmt.Sprintf("Points: %d", user.Points))
	row += 2

	setRow(f, sheet, row, "Level", "Topic", "Completed", "Score", "Completed At")
	row++

	for _, level := range levels {
		for _, topic := range level.Topics {
			completed := "no"
			score := ""
			completedAt := ""
			if e, ok := progress.TopicProgress(topic.ID); ok {
				if e.Completed {
					completed = "yes"
				}
				score = fmt.Sprintf("%d", e.Score)
				if e.CompletedAt != nil {
					completedAt = e.CompletedAt.Format("2006-01-02 15:04")
				}
			}
			setRow(f, sheet, row, level.Name, topic.Title, completed, score, completedAt)
			row++
		}
	}

	row++
	setRow(f, sheet, row, "Summary")
	row++
	for _, level := range levels {
		setRow(f, sheet, row, level.Name, fmt.Sprintf("%d%%", progress.LevelProgress(level.ID)))
		row++
	}
	setRow(f, sheet, row, "Total", fmt.Sprintf("%d%%", progress.TotalProgress()))

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...string) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}

package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/togoal/internal/goal"
	"github.com/sadopc/togoal/internal/period"
)

func ToCSV(rows []goal.Row, r period.Range, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Project", "Goal (hours)", "Recorded time", "Progress", "Remaining time", "Period start", "Period end"}); err != nil {
		return err
	}

	start := r.Start.Format(period.DateFormat)
	end := r.End.Format(period.DateFormat)

	for _, row := range rows {
		record := []string{
			row.Project,
			row.DisplayGoal,
			row.DisplayRecordedTime,
			row.DisplayProgress,
			row.DisplayRemainingTime,
			start,
			end,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}

package export

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/sadopc/togoal/internal/goal"
	"github.com/sadopc/togoal/internal/period"
)

type jsonExport struct {
	ExportedAt  string    `json:"exported_at"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	Count       int       `json:"count"`
	Rows        []jsonRow `json:"rows"`
}

type jsonRow struct {
	Project       string `json:"project"`
	Goal          string `json:"goal,omitempty"`
	RecordedTime  string `json:"recorded_time,omitempty"`
	Progress      string `json:"progress,omitempty"`
	RemainingTime string `json:"remaining_time,omitempty"`
}

func ToJSON(rows []goal.Row, r period.Range, path string) error {
	export := jsonExport{
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		PeriodStart: r.Start.Format(period.DateFormat),
		PeriodEnd:   r.End.Format(period.DateFormat),
		Count:       len(rows),
	}

	for _, row := range rows {
		export.Rows = append(export.Rows, jsonRow{
			Project:       row.Project,
			Goal:          row.DisplayGoal,
			RecordedTime:  row.DisplayRecordedTime,
			Progress:      row.DisplayProgress,
			RemainingTime: row.DisplayRemainingTime,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

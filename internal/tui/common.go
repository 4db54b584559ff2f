package tui

import (
	"fmt"

	"github.com/sadopc/togoal/internal/goal"
	"github.com/sadopc/togoal/internal/period"
	"github.com/sadopc/togoal/internal/storage"
	"github.com/sadopc/togoal/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewStatus viewState = iota
	viewChart
	viewOptions
)

var viewNames = []string{"Status", "Chart", "Options"}

// --- Messages ---

// statusDataMsg carries a freshly derived table state.
type statusDataMsg struct {
	cust storage.Customizations
	rng  period.Range
	warn string
	rows []goal.Row
}

// confirmUnusedMsg asks whether projects that disappeared from the remote
// workspace should be dropped locally.
type confirmUnusedMsg struct {
	plan tracker.SyncPlan
}

type refreshedMsg struct {
	text string
}

type optionsDataMsg struct {
	opts       storage.Options
	configured bool
}

type optionsSavedMsg struct {
	workspaceCount int
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatRange(r period.Range) string {
	return fmt.Sprintf("%s ~ %s", r.Start.Format(period.DateFormat), r.End.Format(period.DateFormat))
}

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// nextPeriodType cycles daily, weekly, monthly, custom in order.
func nextPeriodType(t string) string {
	order := []period.Type{period.Daily, period.Weekly, period.Monthly, period.Custom}
	for i, pt := range order {
		if string(pt) == t {
			return string(order[(i+1)%len(order)])
		}
	}
	return string(period.Daily)
}

// nextColumn cycles through the sortable table columns.
func nextColumn(c string) string {
	order := []goal.Column{goal.ColProject, goal.ColGoal, goal.ColRecordedTime, goal.ColProgress, goal.ColRemainingTime}
	for i, col := range order {
		if string(col) == c {
			return string(order[(i+1)%len(order)])
		}
	}
	return string(goal.ColProject)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

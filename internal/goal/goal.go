// Package goal derives display rows from stored goal and recorded-time
// values and orders them for the status table.
package goal

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Column names a sortable column of the status table.
type Column string

const (
	ColProject       Column = "project"
	ColGoal          Column = "goal"
	ColRecordedTime  Column = "recordedTime"
	ColProgress      Column = "progress"
	ColRemainingTime Column = "remainingTime"
)

// NoValue is the sort key used for rows where neither a goal nor a recorded
// time is stored. It is lower than any real value so such rows sort below
// real ones; it is never displayed.
const NoValue = -1

// Row is one project's derived status. The numeric fields are sort keys, the
// Display fields are what the table renders. A field with no stored value
// renders as an empty string while still carrying a numeric sort key.
type Row struct {
	Project       string
	Goal          float64
	RecordedTime  float64
	Progress      float64
	RemainingTime float64

	DisplayGoal          string
	DisplayRecordedTime  string
	DisplayProgress      string
	DisplayRemainingTime string

	// HasGoal reports whether a parsable goal is stored, used by the
	// "only show projects with goals" filter.
	HasGoal bool
}

// Compute derives a row from the stored numeric strings. Empty or unparsable
// strings count as "no value", which is distinct from zero.
func Compute(project, goalValue, recordedValue string) Row {
	goalNum, hasGoal := parseNumber(goalValue)
	recNum, hasRecorded := parseNumber(recordedValue)

	r := Row{
		Project:      project,
		Goal:         goalNum,
		RecordedTime: recNum,
		HasGoal:      hasGoal,
		DisplayGoal:  strings.TrimSpace(goalValue),
	}
	if hasRecorded {
		r.DisplayRecordedTime = fmt.Sprintf("%.2f", recNum)
	}

	switch {
	case !hasGoal && !hasRecorded:
		r.Progress = NoValue
		r.RemainingTime = NoValue
		return r
	case recNum >= goalNum:
		r.Progress = 100
		r.RemainingTime = 0
	case goalNum == 0:
		// Guard against division by zero; unreachable while recorded
		// times are non-negative but kept for literal inputs.
		r.Progress = 100
		r.RemainingTime = goalNum - recNum
	default:
		r.Progress = math.Floor(recNum * 100 / goalNum)
		r.RemainingTime = goalNum - recNum
	}

	r.DisplayProgress = fmt.Sprintf("%.0f%%", r.Progress)
	r.DisplayRemainingTime = fmt.Sprintf("%.2f", r.RemainingTime)
	return r
}

// Sort orders rows by one column and direction. The sort is stable: rows
// with equal keys keep their original relative order, which matters because
// the NoValue sentinel ties are common.
func Sort(rows []Row, orderBy Column, order Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j], orderBy)
		if order == Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b Row, orderBy Column) int {
	if orderBy == ColProject {
		return strings.Compare(a.Project, b.Project)
	}
	av, bv := sortKey(a, orderBy), sortKey(b, orderBy)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func sortKey(r Row, orderBy Column) float64 {
	switch orderBy {
	case ColGoal:
		return r.Goal
	case ColRecordedTime:
		return r.RecordedTime
	case ColProgress:
		return r.Progress
	default:
		return r.RemainingTime
	}
}

// parseNumber parses a stored numeric string. The boolean is false for empty
// or unparsable input; the value is then 0 so arithmetic can proceed.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

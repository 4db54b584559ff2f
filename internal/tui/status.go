package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/togoal/internal/goal"
	"github.com/sadopc/togoal/internal/period"
	"github.com/sadopc/togoal/internal/storage"
	"github.com/sadopc/togoal/internal/tracker"
)

type statusForm int

const (
	formNone statusForm = iota
	formGoal
	formBounds
	formConfirm
)

type statusModel struct {
	service *tracker.Service
	width   int
	height  int

	cust    storage.Customizations
	rng     period.Range
	warn    string
	rows    []goal.Row
	cursor  int
	loading bool

	formActive bool
	form       *huh.Form
	formKind   statusForm

	// Form values as pointers (survive value copies)
	goalProject   string
	goalValue     *string
	boundsStart   *string
	boundsEnd     *string
	confirmRemove *bool
	pendingPlan   tracker.SyncPlan
}

func newStatusModel(svc *tracker.Service) statusModel {
	gv, bs, be := "", "", ""
	cr := false
	return statusModel{
		service:       svc,
		goalValue:     &gv,
		boundsStart:   &bs,
		boundsEnd:     &be,
		confirmRemove: &cr,
	}
}

func (s *statusModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

// refresh rebuilds the table from the local store only.
func (s statusModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cust, err := s.service.Store().LoadCustomizations(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		rng, warn := s.service.PeriodRange(ctx, time.Now(), cust)
		rows, err := s.service.Rows(ctx, cust)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		warnText := ""
		if warn != nil {
			warnText = warn.Error()
		}
		return statusDataMsg{cust: cust, rng: rng, warn: warnText, rows: rows}
	}
}

// pull syncs projects and recorded times from the remote service. When the
// remote no longer has some stored projects, the user is asked before they
// are dropped.
func (s statusModel) pull() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		plan, err := s.service.SyncProjects(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Sync error: %v", err), isError: true}
		}
		if len(plan.Unused) > 0 {
			return confirmUnusedMsg{plan: plan}
		}
		return s.finishPull(plan, false)
	}
}

func (s statusModel) finishPull(plan tracker.SyncPlan, removeUnused bool) tea.Msg {
	ctx := context.Background()
	if err := s.service.ApplySync(ctx, plan, removeUnused); err != nil {
		return statusMsg{text: fmt.Sprintf("Sync error: %v", err), isError: true}
	}
	cust, err := s.service.Store().LoadCustomizations(ctx)
	if err != nil {
		return statusMsg{text: fmt.Sprintf("Sync error: %v", err), isError: true}
	}
	warn, err := s.service.RefreshRecordedTimes(ctx, time.Now(), cust)
	if err != nil {
		return statusMsg{text: fmt.Sprintf("Refresh error: %v", err), isError: true}
	}
	text := "Refreshed"
	if len(plan.New) > 0 {
		text = fmt.Sprintf("Refreshed, %d new projects", len(plan.New))
	}
	if warn != nil {
		text += " (" + warn.Error() + ")"
	}
	return refreshedMsg{text: text}
}

func (s statusModel) storePatch(patch storage.CustomizationsPatch) tea.Cmd {
	return func() tea.Msg {
		if err := s.service.Store().StoreCustomizations(context.Background(), patch); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return s.refresh()()
	}
}

func (s statusModel) update(msg tea.Msg) (statusModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case statusDataMsg:
		s.cust = msg.cust
		s.rng = msg.rng
		s.warn = msg.warn
		s.rows = msg.rows
		s.loading = false
		if s.cursor >= len(s.rows) {
			s.cursor = max(0, len(s.rows)-1)
		}
		return s, nil

	case confirmUnusedMsg:
		s.loading = false
		return s.showConfirmForm(msg.plan)

	case refreshedMsg:
		s.loading = false
		return s, s.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Refresh):
			s.loading = true
			return s, s.pull()

		case key.Matches(msg, keys.Goal), key.Matches(msg, keys.Enter):
			if len(s.rows) == 0 {
				return s, nil
			}
			return s.showGoalForm(s.rows[s.cursor])

		case key.Matches(msg, keys.Period):
			next := nextPeriodType(s.cust.TrackingPeriodType)
			return s, s.storePatch(storage.CustomizationsPatch{TrackingPeriodType: &next})

		case key.Matches(msg, keys.Bounds):
			return s.showBoundsForm()

		case key.Matches(msg, keys.Filter):
			toggled := !s.cust.OnlyShowPrjWithGoals
			return s, s.storePatch(storage.CustomizationsPatch{OnlyShowPrjWithGoals: &toggled})

		case key.Matches(msg, keys.SortCol):
			next := nextColumn(s.cust.OrderBy)
			return s, s.storePatch(storage.CustomizationsPatch{OrderBy: &next})

		case key.Matches(msg, keys.SortDir):
			flipped := string(goal.Asc)
			if s.cust.Order == string(goal.Asc) {
				flipped = string(goal.Desc)
			}
			return s, s.storePatch(storage.CustomizationsPatch{Order: &flipped})

		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil

		case key.Matches(msg, keys.Down):
			if s.cursor < len(s.rows)-1 {
				s.cursor++
			}
			return s, nil
		}
	}
	return s, nil
}

// --- Forms ---

func (s statusModel) showGoalForm(row goal.Row) (statusModel, tea.Cmd) {
	s.goalProject = row.Project
	*s.goalValue = row.DisplayGoal

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Goal for %s (hours)", row.Project)).
				Description("Leave empty or non-positive to clear").
				Value(s.goalValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.formKind = formGoal
	return s, s.form.Init()
}

func (s statusModel) showBoundsForm() (statusModel, tea.Cmd) {
	*s.boundsStart = s.cust.TrackingPeriodStartCustomValue
	*s.boundsEnd = s.cust.TrackingPeriodEndCustomValue

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Start date (YYYY-MM-DD)").Value(s.boundsStart),
			huh.NewInput().Title("End date (YYYY-MM-DD)").Value(s.boundsEnd),
		).Title("Custom period"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.formKind = formBounds
	return s, s.form.Init()
}

func (s statusModel) showConfirmForm(plan tracker.SyncPlan) (statusModel, tea.Cmd) {
	s.pendingPlan = plan
	*s.confirmRemove = false

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %d projects no longer in the workspace?", len(plan.Unused))).
				Description(joinNames(plan.Unused)).
				Affirmative("Remove").
				Negative("Keep").
				Value(s.confirmRemove),
		),
	).WithShowHelp(true)

	s.formActive = true
	s.formKind = formConfirm
	return s, s.form.Init()
}

func (s statusModel) updateForm(msg tea.Msg) (statusModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		kind := s.formKind
		s.form = nil
		s.formKind = formNone
		switch kind {
		case formGoal:
			return s, s.saveGoal()
		case formBounds:
			custom := string(period.Custom)
			return s, s.storePatch(storage.CustomizationsPatch{
				TrackingPeriodType:             &custom,
				TrackingPeriodStartCustomValue: s.boundsStart,
				TrackingPeriodEndCustomValue:   s.boundsEnd,
			})
		case formConfirm:
			plan := s.pendingPlan
			remove := *s.confirmRemove
			return s, func() tea.Msg { return s.finishPull(plan, remove) }
		}
	}

	return s, cmd
}

// saveGoal submits the whole goal batch with the edited project overridden;
// projects missing from a batch get their goal cleared, so the current goals
// must travel along.
func (s statusModel) saveGoal() tea.Cmd {
	project := s.goalProject
	value := *s.goalValue
	cust := s.cust
	return func() tea.Msg {
		ctx := context.Background()
		unfiltered := cust
		unfiltered.OnlyShowPrjWithGoals = false
		rows, err := s.service.Rows(ctx, unfiltered)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		inputs := make(map[string]string, len(rows))
		for _, row := range rows {
			inputs[row.Project] = row.DisplayGoal
		}
		inputs[project] = value
		t := period.Type(cust.TrackingPeriodType)
		if err := s.service.SaveGoals(ctx, inputs, t); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return s.refresh()()
	}
}

// --- View ---

var statusColumns = []struct {
	title string
	col   goal.Column
	width int
}{
	{"Project", goal.ColProject, 24},
	{"Goal", goal.ColGoal, 10},
	{"Recorded", goal.ColRecordedTime, 10},
	{"Progress", goal.ColProgress, 10},
	{"Remaining", goal.ColRemainingTime, 10},
}

func (s statusModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Status")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Status")
	subtitle := subtitleStyle.Render(fmt.Sprintf("%s  %s%s",
		s.cust.TrackingPeriodType, formatRange(s.rng), s.filterLabel()))
	if s.loading {
		subtitle = subtitleStyle.Render("Refreshing...")
	}

	var lines []string
	lines = append(lines, title)
	lines = append(lines, subtitle)
	if s.warn != "" {
		lines = append(lines, warningStyle.Render(s.warn))
	}
	lines = append(lines, "")
	lines = append(lines, s.renderTableHeader())

	if len(s.rows) == 0 {
		lines = append(lines, mutedStyle.Render("  No projects. Press r to pull from the remote workspace."))
	}
	for i, row := range s.rows {
		lines = append(lines, s.renderRow(i, row))
	}

	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("  g: goal  p: period  f: filter  o/O: sort  b: bounds  r: refresh"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s statusModel) renderTableHeader() string {
	line := "  "
	for _, c := range statusColumns {
		label := c.title
		if string(c.col) == s.cust.OrderBy {
			if s.cust.Order == string(goal.Desc) {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		line += lipgloss.NewStyle().Width(c.width).Bold(true).Render(label)
	}
	return highlightStyle.Render(line)
}

func (s statusModel) renderRow(i int, row goal.Row) string {
	style := normalItemStyle
	cursor := "  "
	if i == s.cursor {
		style = selectedItemStyle
		cursor = "> "
	}

	cells := []string{
		row.Project,
		row.DisplayGoal,
		row.DisplayRecordedTime,
		row.DisplayProgress,
		row.DisplayRemainingTime,
	}
	line := cursor
	for j, cell := range cells {
		if cell == "" {
			cell = "-"
		}
		line += lipgloss.NewStyle().Width(statusColumns[j].width).Render(cell)
	}
	return style.Render(line)
}

func (s statusModel) filterLabel() string {
	if s.cust.OnlyShowPrjWithGoals {
		return "  [goals only]"
	}
	return ""
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

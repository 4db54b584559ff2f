package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/togoal/internal/storage"
	"github.com/sadopc/togoal/internal/tracker"
)

type optionsModel struct {
	service *tracker.Service
	width   int
	height  int

	opts       storage.Options
	configured bool

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	token     *string
	workspace *string
	firstDay  *string
}

func newOptionsModel(svc *tracker.Service) optionsModel {
	tok, ws, fd := "", "", ""
	return optionsModel{
		service:   svc,
		token:     &tok,
		workspace: &ws,
		firstDay:  &fd,
	}
}

func (o *optionsModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

func (o optionsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		opts, err := o.service.Store().LoadOptions(context.Background())
		if err != nil {
			if errors.Is(err, storage.ErrNotConfigured) {
				return optionsDataMsg{configured: false}
			}
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return optionsDataMsg{opts: opts, configured: true}
	}
}

func (o optionsModel) update(msg tea.Msg) (optionsModel, tea.Cmd) {
	if o.formActive && o.form != nil {
		return o.updateForm(msg)
	}

	switch msg := msg.(type) {
	case optionsDataMsg:
		o.opts = msg.opts
		o.configured = msg.configured
		return o, nil

	case optionsSavedMsg:
		return o, o.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return o.showForm()
		}
	}
	return o, nil
}

func (o optionsModel) showForm() (optionsModel, tea.Cmd) {
	*o.token = o.opts.APIToken
	*o.workspace = o.opts.WorkspaceID
	*o.firstDay = o.opts.FirstDayOfWeek
	if *o.firstDay == "" {
		*o.firstDay = "0"
	}

	dayOptions := make([]huh.Option[string], len(weekdayNames))
	for i, name := range weekdayNames {
		dayOptions[i] = huh.NewOption(name, strconv.Itoa(i))
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("API token").
			Description("From your Toggl profile page").
			Password(true).
			Value(o.token),
	}
	if len(o.opts.RetrievedWorkspaces) > 0 {
		wsOptions := make([]huh.Option[string], len(o.opts.RetrievedWorkspaces))
		for i, w := range o.opts.RetrievedWorkspaces {
			wsOptions[i] = huh.NewOption(w.Name, w.ID)
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Workspace").
			Options(wsOptions...).
			Value(o.workspace))
	}
	fields = append(fields, huh.NewSelect[string]().
		Title("First day of week").
		Options(dayOptions...).
		Value(o.firstDay))

	o.form = huh.NewForm(
		huh.NewGroup(fields...).Title("Options"),
	).WithShowHelp(true).WithShowErrors(true)

	o.formActive = true
	return o, o.form.Init()
}

func (o optionsModel) updateForm(msg tea.Msg) (optionsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			o.formActive = false
			o.form = nil
			return o, nil
		}
	}

	form, cmd := o.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		o.form = f
	}

	if o.form.State == huh.StateCompleted {
		o.formActive = false
		o.form = nil
		return o, o.save()
	}

	return o, cmd
}

// save fetches the workspace list with the submitted token, keeps the chosen
// workspace if it still exists, and persists the whole record.
func (o optionsModel) save() tea.Cmd {
	token := strings.TrimSpace(*o.token)
	workspace := *o.workspace
	firstDay := *o.firstDay
	return func() tea.Msg {
		ctx := context.Background()

		opts := storage.Options{
			APIToken:       token,
			WorkspaceID:    workspace,
			FirstDayOfWeek: firstDay,
		}

		if token != "" {
			workspaces, err := o.service.Workspaces(ctx, token)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Workspace fetch error: %v", err), isError: true}
			}
			opts.RetrievedWorkspaces = workspaces
			if len(workspaces) > 0 && !containsWorkspace(workspaces, workspace) {
				opts.WorkspaceID = workspaces[0].ID
			}
		}

		if err := o.service.Store().StoreOptions(ctx, opts); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return optionsSavedMsg{workspaceCount: len(opts.RetrievedWorkspaces)}
	}
}

func containsWorkspace(workspaces []storage.Workspace, id string) bool {
	for _, w := range workspaces {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (o optionsModel) view() string {
	w := o.width - 4

	if o.formActive && o.form != nil {
		title := titleStyle.Render("Options")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", o.form.View()),
		)
	}

	title := titleStyle.Render("Options")
	hint := mutedStyle.Render("Press enter to edit options")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	if !o.configured {
		rows = append(rows, warningStyle.Render("  Not configured yet. Set your API token to get started."))
	} else {
		rows = append(rows, o.renderEntry("API token", maskToken(o.opts.APIToken)))
		rows = append(rows, o.renderEntry("Workspace", o.workspaceName()))
		rows = append(rows, o.renderEntry("First day of week", o.firstDayName()))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (o optionsModel) renderEntry(label, value string) string {
	l := lipgloss.NewStyle().Width(24).Render(label)
	return fmt.Sprintf("  %s %s", l, highlightStyle.Render(value))
}

func (o optionsModel) workspaceName() string {
	for _, w := range o.opts.RetrievedWorkspaces {
		if w.ID == o.opts.WorkspaceID {
			return w.Name
		}
	}
	if o.opts.WorkspaceID == "" {
		return "(none)"
	}
	return o.opts.WorkspaceID
}

func (o optionsModel) firstDayName() string {
	if n, err := strconv.Atoi(o.opts.FirstDayOfWeek); err == nil && n >= 0 && n < len(weekdayNames) {
		return weekdayNames[n]
	}
	return weekdayNames[0]
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

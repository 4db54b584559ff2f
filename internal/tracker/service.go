// Package tracker is the action boundary of the application: one method per
// user-triggered operation, each a sequential read-modify-write against the
// stored records plus, where needed, a round-trip to the remote service.
// Failures come back as error values for the UI to render; nothing here
// retries automatically or mutates stored state on a remote failure.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sadopc/togoal/internal/goal"
	"github.com/sadopc/togoal/internal/period"
	"github.com/sadopc/togoal/internal/storage"
	"github.com/sadopc/togoal/internal/toggl"
)

// ErrMissingCredentials is returned when the options record exists but the
// API token or workspace is not set.
var ErrMissingCredentials = errors.New("API token or workspace ID is empty, set them in options")

// Remote is the slice of the time-tracking service the tracker needs.
type Remote interface {
	Workspaces(ctx context.Context) ([]toggl.Workspace, error)
	ProjectNames(ctx context.Context, workspaceID string) ([]string, error)
	RecordedTimes(ctx context.Context, workspaceID string, r period.Range) (map[string]string, error)
}

// RemoteFactory builds a Remote for a credential. The token travels with
// each call because it can change between actions (options save).
type RemoteFactory func(token string) Remote

// Service wires the stores and the remote together.
type Service struct {
	store     *storage.Store
	newRemote RemoteFactory
}

// New creates a Service backed by the real Toggl client.
func New(store *storage.Store) *Service {
	return NewWithRemote(store, func(token string) Remote {
		return toggl.New(token)
	})
}

// NewWithRemote creates a Service with a custom remote factory, used by
// tests and by the TUI options form preview.
func NewWithRemote(store *storage.Store, factory RemoteFactory) *Service {
	return &Service{store: store, newRemote: factory}
}

// Store exposes the underlying record store for preference reads/writes
// that need no orchestration.
func (s *Service) Store() *storage.Store {
	return s.store
}

// Workspaces fetches the workspace list for a token that may not be saved
// yet (the options form calls this while the user types).
func (s *Service) Workspaces(ctx context.Context, token string) ([]storage.Workspace, error) {
	raw, err := s.newRemote(token).Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	workspaces := make([]storage.Workspace, len(raw))
	for i, w := range raw {
		workspaces[i] = storage.Workspace{ID: w.ID, Name: w.Name}
	}
	return workspaces, nil
}

// PeriodRange resolves the active tracking period to absolute bounds. The
// weekly period respects the configured first day of week, defaulting to
// Sunday when options are missing or unset. The returned warning is non-nil
// for suspect custom bounds; the range is usable regardless.
func (s *Service) PeriodRange(ctx context.Context, now time.Time, cust storage.Customizations) (period.Range, error) {
	firstDay := 0
	if opts, err := s.store.LoadOptions(ctx); err == nil && opts.FirstDayOfWeek != "" {
		if n, err := strconv.Atoi(opts.FirstDayOfWeek); err == nil && n >= 0 && n <= 6 {
			firstDay = n
		}
	}
	return period.ForType(now, period.Type(cust.TrackingPeriodType), firstDay,
		cust.TrackingPeriodStartCustomValue, cust.TrackingPeriodEndCustomValue)
}

// SyncPlan is the outcome of diffing remote projects against stored ones.
// Unused removal needs user confirmation, so the plan is returned instead of
// applied directly.
type SyncPlan struct {
	New    []string
	Unused []string
}

// SyncProjects fetches the remote project names and diffs them against the
// stored map.
func (s *Service) SyncProjects(ctx context.Context) (SyncPlan, error) {
	opts, err := s.credentials(ctx)
	if err != nil {
		return SyncPlan{}, err
	}

	remoteNames, err := s.newRemote(opts.APIToken).ProjectNames(ctx, opts.WorkspaceID)
	if err != nil {
		return SyncPlan{}, err
	}
	storedNames, err := s.store.ProjectNames(ctx)
	if err != nil {
		return SyncPlan{}, err
	}

	plan := SyncPlan{
		New:    diff(remoteNames, storedNames),
		Unused: diff(storedNames, remoteNames),
	}
	sort.Strings(plan.New)
	sort.Strings(plan.Unused)
	return plan, nil
}

// ApplySync persists a sync plan. Unused projects are only removed when the
// user confirmed.
func (s *Service) ApplySync(ctx context.Context, plan SyncPlan, removeUnused bool) error {
	return s.store.AddProjects(ctx, plan.New, removeUnused, plan.Unused)
}

// RefreshRecordedTimes pulls recorded hours for the active period and writes
// them under the period's sub-records. Remote hours for projects that are
// not stored locally are dropped; stored projects with no remote hours get
// the field cleared by the store layer. The first return value is the
// period validation warning, if any.
func (s *Service) RefreshRecordedTimes(ctx context.Context, now time.Time, cust storage.Customizations) (error, error) {
	opts, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	rng, warn := s.PeriodRange(ctx, now, cust)

	remoteTimes, err := s.newRemote(opts.APIToken).RecordedTimes(ctx, opts.WorkspaceID, rng)
	if err != nil {
		return warn, err
	}
	storedNames, err := s.store.ProjectNames(ctx)
	if err != nil {
		return warn, err
	}

	times := make(map[string]string)
	for _, name := range storedNames {
		if hours, ok := remoteTimes[name]; ok {
			times[name] = hours
		}
	}

	t := period.Type(cust.TrackingPeriodType)
	if err := s.store.UpdateProjectRecordedTimes(ctx, times, t); err != nil {
		return warn, err
	}
	return warn, nil
}

// SaveGoals writes the supplied goal inputs for the active period. Values
// that do not parse as a positive number are saved as empty (goal cleared),
// the same normalization the goal inputs always had.
func (s *Service) SaveGoals(ctx context.Context, inputs map[string]string, t period.Type) error {
	storedNames, err := s.store.ProjectNames(ctx)
	if err != nil {
		return err
	}

	goals := make(map[string]string)
	for _, name := range storedNames {
		value := inputs[name]
		if n, err := strconv.ParseFloat(value, 64); err != nil || n <= 0 {
			value = ""
		}
		goals[name] = value
	}
	return s.store.UpdateProjectGoals(ctx, goals, t)
}

// Rows derives the display rows for the active period: migrate each stored
// record to the period view, compute progress, filter and sort per the
// customizations.
func (s *Service) Rows(ctx context.Context, cust storage.Customizations) ([]goal.Row, error) {
	statuses, err := s.store.ProjectStatuses(ctx)
	if err != nil {
		return nil, err
	}

	t := period.Type(cust.TrackingPeriodType)
	rows := make([]goal.Row, 0, len(statuses))
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		view := statuses[name].ForPeriod(t)
		row := goal.Compute(name, deref(view.Goal), deref(view.RecordedTime))
		if cust.OnlyShowPrjWithGoals && !row.HasGoal {
			continue
		}
		rows = append(rows, row)
	}

	goal.Sort(rows, goal.Column(cust.OrderBy), goal.Order(cust.Order))
	return rows, nil
}

func (s *Service) credentials(ctx context.Context) (storage.Options, error) {
	opts, err := s.store.LoadOptions(ctx)
	if err != nil {
		return storage.Options{}, fmt.Errorf("load options: %w", err)
	}
	if opts.APIToken == "" || opts.WorkspaceID == "" {
		return storage.Options{}, ErrMissingCredentials
	}
	return opts, nil
}

// diff returns the elements of a not present in b.
func diff(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

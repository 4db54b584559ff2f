package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/sadopc/togoal/internal/period"
)

// Store is the record-level API over the KV namespace. Operations that read
// and write the same root key are read-modify-write sequences; the backing
// store is last-writer-wins and callers must not interleave two such calls
// without awaiting the first.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// ProjectNames returns the stored project names, sorted. Empty when the
// project map has never been written.
func (s *Store) ProjectNames(ctx context.Context) ([]string, error) {
	statuses, err := s.ProjectStatuses(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ProjectStatuses returns the full project map, empty if unset.
func (s *Store) ProjectStatuses(ctx context.Context) (ProjectStatuses, error) {
	return s.loadModel(ctx)
}

// AddProjects inserts an empty record for every new name not already present
// and, when removeUnused is set, drops the unused names first. The whole map
// is written back in one set.
func (s *Store) AddProjects(ctx context.Context, newNames []string, removeUnused bool, unusedNames []string) error {
	statuses, err := s.loadModel(ctx)
	if err != nil {
		return err
	}

	if removeUnused {
		for _, name := range unusedNames {
			delete(statuses, name)
		}
	}

	for _, name := range newNames {
		if _, ok := statuses[name]; !ok {
			statuses[name] = &ProjectStatus{}
		}
	}

	return s.saveModel(ctx, statuses)
}

// UpdateProjectGoals sets the goal for every stored project under the given
// period: the supplied value when the batch has one, an explicit empty
// string otherwise.
func (s *Store) UpdateProjectGoals(ctx context.Context, goals map[string]string, t period.Type) error {
	return s.updateProjects(ctx, goals, t, setGoal)
}

// UpdateProjectRecordedTimes does the same for recorded times.
func (s *Store) UpdateProjectRecordedTimes(ctx context.Context, times map[string]string, t period.Type) error {
	return s.updateProjects(ctx, times, t, setRecordedTime)
}

type fieldSetter func(legacy *ProjectStatus, sub *PeriodStatus, value string)

func setGoal(legacy *ProjectStatus, sub *PeriodStatus, value string) {
	legacy.Goal = &value
	sub.Goal = &value
}

func setRecordedTime(legacy *ProjectStatus, sub *PeriodStatus, value string) {
	legacy.RecordedTime = &value
	sub.RecordedTime = &value
}

// updateProjects is the shared read-modify-write routine behind both field
// updates. Iteration is driven by the persisted names, so batch entries for
// unknown projects are ignored and persisted projects absent from the batch
// get the field cleared, not left stale. The legacy scalar mirrors every
// write so pre-versioning surfaces keep seeing the latest values.
func (s *Store) updateProjects(ctx context.Context, values map[string]string, t period.Type, set fieldSetter) error {
	statuses, err := s.loadModel(ctx)
	if err != nil {
		return err
	}

	for name, status := range statuses {
		sub := status.seedPeriod(t)
		if v, ok := values[name]; ok && v != "" {
			set(status, sub, v)
		} else {
			set(status, sub, "")
		}
	}

	return s.saveModel(ctx, statuses)
}

func (s *Store) loadModel(ctx context.Context) (ProjectStatuses, error) {
	raw, ok, err := s.kv.Get(ctx, modelRootKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return ProjectStatuses{}, nil
	}
	var statuses ProjectStatuses
	if err := json.Unmarshal(raw, &statuses); err != nil {
		return nil, fmt.Errorf("decode project map: %w", err)
	}
	if statuses == nil {
		statuses = ProjectStatuses{}
	}
	return statuses, nil
}

func (s *Store) saveModel(ctx context.Context, statuses ProjectStatuses) error {
	raw, err := json.Marshal(statuses)
	if err != nil {
		return fmt.Errorf("encode project map: %w", err)
	}
	return s.kv.Set(ctx, modelRootKey, raw)
}

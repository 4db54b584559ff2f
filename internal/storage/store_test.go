package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/sadopc/togoal/internal/period"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	kv, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return NewStore(kv)
}

func strPtr(s string) *string { return &s }

// ============================================================
// KV backend
// ============================================================

func TestKVGetMissing(t *testing.T) {
	kv, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	_, ok, err := kv.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("missing key should report ok=false")
	}
}

func TestKVSetOverwrites(t *testing.T) {
	kv, _ := NewMemory()
	defer kv.Close()
	ctx := context.Background()

	kv.Set(ctx, "k", []byte("v1"))
	kv.Set(ctx, "k", []byte("v2"))
	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(v) != "v2" {
		t.Fatalf("expected v2, got %s", v)
	}
}

func TestKVPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/togoal.db"

	kv, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	kv.Set(context.Background(), "k", []byte("v"))
	kv.Close()

	kv2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer kv2.Close()
	v, ok, _ := kv2.Get(context.Background(), "k")
	if !ok || string(v) != "v" {
		t.Fatalf("value should survive reopen, got ok=%v %s", ok, v)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

// ============================================================
// Project map
// ============================================================

func TestProjectNamesEmpty(t *testing.T) {
	s := newTestStore(t)
	names, err := s.ProjectNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no names, got %v", names)
	}
}

func TestAddProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddProjects(ctx, []string{"B", "A"}, false, nil); err != nil {
		t.Fatal(err)
	}
	names, _ := s.ProjectNames(ctx)
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("expected sorted [A B], got %v", names)
	}
}

func TestAddProjectsKeepsExistingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"A"}, false, nil)
	s.UpdateProjectGoals(ctx, map[string]string{"A": "5"}, period.Weekly)

	// Re-adding A must not wipe its goals.
	s.AddProjects(ctx, []string{"A"}, false, nil)
	statuses, _ := s.ProjectStatuses(ctx)
	if statuses["A"].Goal == nil || *statuses["A"].Goal != "5" {
		t.Fatalf("existing record should be untouched: %+v", statuses["A"])
	}
}

func TestAddProjectsRemovesUnused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"B"}, false, nil)
	if err := s.AddProjects(ctx, []string{"A"}, true, []string{"B"}); err != nil {
		t.Fatal(err)
	}

	statuses, _ := s.ProjectStatuses(ctx)
	if len(statuses) != 1 {
		t.Fatalf("expected 1 project, got %d", len(statuses))
	}
	if _, ok := statuses["A"]; !ok {
		t.Fatal("A should exist")
	}
	if _, ok := statuses["B"]; ok {
		t.Fatal("B should have been removed")
	}
}

func TestAddProjectsKeepsUnusedWithoutFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"B"}, false, nil)
	s.AddProjects(ctx, []string{"A"}, false, []string{"B"})

	statuses, _ := s.ProjectStatuses(ctx)
	if len(statuses) != 2 {
		t.Fatalf("expected both projects kept, got %v", statuses)
	}
}

// ============================================================
// Field updates
// ============================================================

func TestUpdateProjectGoals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"A", "C"}, false, nil)
	if err := s.UpdateProjectGoals(ctx, map[string]string{"A": "5"}, period.Weekly); err != nil {
		t.Fatal(err)
	}

	statuses, _ := s.ProjectStatuses(ctx)
	a, c := statuses["A"], statuses["C"]

	if a.Weekly == nil || a.Weekly.Goal == nil || *a.Weekly.Goal != "5" {
		t.Fatalf("A.weekly.goal should be 5: %+v", a.Weekly)
	}
	if a.Goal == nil || *a.Goal != "5" {
		t.Fatalf("legacy goal should mirror the write: %+v", a)
	}
	// C was not in the batch: the field is explicitly cleared, not stale.
	if c.Weekly == nil || c.Weekly.Goal == nil || *c.Weekly.Goal != "" {
		t.Fatalf("C.weekly.goal should be cleared to empty: %+v", c.Weekly)
	}
	if c.Goal == nil || *c.Goal != "" {
		t.Fatalf("C legacy goal should be cleared to empty: %+v", c)
	}
}

func TestUpdateProjectRecordedTimes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"A"}, false, nil)
	if err := s.UpdateProjectRecordedTimes(ctx, map[string]string{"A": "3.50"}, period.Daily); err != nil {
		t.Fatal(err)
	}

	statuses, _ := s.ProjectStatuses(ctx)
	a := statuses["A"]
	if a.Daily == nil || a.Daily.RecordedTime == nil || *a.Daily.RecordedTime != "3.50" {
		t.Fatalf("A.daily.recordedTime should be 3.50: %+v", a.Daily)
	}
	if a.RecordedTime == nil || *a.RecordedTime != "3.50" {
		t.Fatalf("legacy recordedTime should mirror: %+v", a)
	}
	if a.Goal != nil {
		t.Fatalf("goal should be untouched by a recorded-time update: %+v", a)
	}
}

func TestUpdateIgnoresUnknownProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"A"}, false, nil)
	// "Ghost" is not persisted; the update tolerates it silently.
	if err := s.UpdateProjectGoals(ctx, map[string]string{"Ghost": "9"}, period.Weekly); err != nil {
		t.Fatal(err)
	}
	statuses, _ := s.ProjectStatuses(ctx)
	if len(statuses) != 1 {
		t.Fatalf("no project should be created: %v", statuses)
	}
}

func TestUpdateEmptyValueClearsField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"A"}, false, nil)
	s.UpdateProjectGoals(ctx, map[string]string{"A": "5"}, period.Weekly)
	s.UpdateProjectGoals(ctx, map[string]string{"A": ""}, period.Weekly)

	statuses, _ := s.ProjectStatuses(ctx)
	if *statuses["A"].Weekly.Goal != "" || *statuses["A"].Goal != "" {
		t.Fatalf("empty batch value should clear the field: %+v", statuses["A"])
	}
}

func TestUpdateMostRecentPeriodWinsLegacyMirror(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddProjects(ctx, []string{"A"}, false, nil)
	s.UpdateProjectGoals(ctx, map[string]string{"A": "5"}, period.Weekly)
	s.UpdateProjectGoals(ctx, map[string]string{"A": "8"}, period.Monthly)

	statuses, _ := s.ProjectStatuses(ctx)
	a := statuses["A"]
	if *a.Weekly.Goal != "5" || *a.Monthly.Goal != "8" {
		t.Fatalf("per-period values should be independent: %+v", a)
	}
	if *a.Goal != "8" {
		t.Fatalf("legacy mirror should hold the most recent write, got %q", *a.Goal)
	}
}

// ============================================================
// Options
// ============================================================

func TestLoadOptionsNotConfigured(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadOptions(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStoreAndLoadOptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	opts := Options{
		APIToken:       "tok",
		WorkspaceID:    "42",
		FirstDayOfWeek: "1",
		RetrievedWorkspaces: []Workspace{
			{ID: "42", Name: "Personal"},
		},
	}
	if err := s.StoreOptions(ctx, opts); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadOptions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.APIToken != "tok" || got.WorkspaceID != "42" || got.FirstDayOfWeek != "1" {
		t.Fatalf("unexpected options: %+v", got)
	}
	if len(got.RetrievedWorkspaces) != 1 || got.RetrievedWorkspaces[0].Name != "Personal" {
		t.Fatalf("workspaces should round-trip: %+v", got.RetrievedWorkspaces)
	}
}

func TestStoreOptionsOverwritesWholeRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.StoreOptions(ctx, Options{APIToken: "tok", WorkspaceID: "42"})
	s.StoreOptions(ctx, Options{APIToken: "tok2"})

	got, _ := s.LoadOptions(ctx)
	if got.WorkspaceID != "" {
		t.Fatal("store should overwrite, not merge")
	}
}

// ============================================================
// Customizations
// ============================================================

func TestLoadCustomizationsDefaults(t *testing.T) {
	s := newTestStore(t)
	cust, err := s.LoadCustomizations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultCustomizations()
	if cust != def {
		t.Fatalf("expected defaults %+v, got %+v", def, cust)
	}
	if cust.Order != "asc" || cust.OrderBy != "project" || cust.TrackingPeriodType != "weekly" {
		t.Fatalf("unexpected defaults: %+v", cust)
	}
}

func TestStoreCustomizationsPartialMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	show := true
	if err := s.StoreCustomizations(ctx, CustomizationsPatch{OnlyShowPrjWithGoals: &show}); err != nil {
		t.Fatal(err)
	}
	order := "desc"
	if err := s.StoreCustomizations(ctx, CustomizationsPatch{Order: &order}); err != nil {
		t.Fatal(err)
	}

	cust, _ := s.LoadCustomizations(ctx)
	if !cust.OnlyShowPrjWithGoals {
		t.Fatal("first patch should survive the second")
	}
	if cust.Order != "desc" {
		t.Fatalf("expected desc, got %s", cust.Order)
	}
	if cust.OrderBy != "project" {
		t.Fatalf("unpatched fields keep defaults, got %s", cust.OrderBy)
	}
}

func TestLoadCustomizationsRepairsMissingFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// An older release wrote a record without the period fields.
	s.kv.Set(ctx, customizationsRootKey, []byte(`{"onlyShowPrjWithGoals":true,"order":"desc"}`))

	cust, err := s.LoadCustomizations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cust.OnlyShowPrjWithGoals || cust.Order != "desc" {
		t.Fatalf("stored fields should be kept: %+v", cust)
	}
	if cust.OrderBy != "project" || cust.TrackingPeriodType != "weekly" {
		t.Fatalf("missing fields should repair to defaults: %+v", cust)
	}
}

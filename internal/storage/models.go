package storage

import "github.com/sadopc/togoal/internal/period"

// Root keys in the KV namespace. The model key name is kept from the 2.x
// releases so existing synced data keeps working.
const (
	modelRootKey          = "toGoalModel"
	optionsRootKey        = "options"
	customizationsRootKey = "customizations"
)

// PeriodStatus is one project's goal and recorded time for a single tracking
// period. Nil pointers mean the field was never written, which is distinct
// from an empty string (explicitly cleared).
type PeriodStatus struct {
	Goal         *string `json:"goal,omitempty"`
	RecordedTime *string `json:"recordedTime,omitempty"`
}

// ProjectStatus is the stored record for one project. Goal and RecordedTime
// are the legacy pre-versioning scalars, kept mirroring the most recently
// written period so data written by old releases stays meaningful. The
// per-period sub-records are created lazily on first write under a period.
type ProjectStatus struct {
	Goal         *string       `json:"goal,omitempty"`
	RecordedTime *string       `json:"recordedTime,omitempty"`
	Daily        *PeriodStatus `json:"daily,omitempty"`
	Weekly       *PeriodStatus `json:"weekly,omitempty"`
	Monthly      *PeriodStatus `json:"monthly,omitempty"`
	Custom       *PeriodStatus `json:"custom,omitempty"`
}

// ProjectStatuses is the whole project map, keyed by project name.
type ProjectStatuses map[string]*ProjectStatus

// periodSlot returns the address of the sub-record pointer for a period
// type, so callers can read or install it. Unknown types map to Daily.
func (p *ProjectStatus) periodSlot(t period.Type) **PeriodStatus {
	switch t {
	case period.Weekly:
		return &p.Weekly
	case period.Monthly:
		return &p.Monthly
	case period.Custom:
		return &p.Custom
	default:
		return &p.Daily
	}
}

// Workspace is a remote workspace the user can pick in the options.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options is the user configuration record. All fields are optional until
// the first save; the record as a whole being absent means "not configured".
type Options struct {
	APIToken            string      `json:"apiToken,omitempty"`
	WorkspaceID         string      `json:"workspaceId,omitempty"`
	FirstDayOfWeek      string      `json:"firstDayOfWeek,omitempty"`
	RetrievedWorkspaces []Workspace `json:"retrievedWorkspaces,omitempty"`
}

// Customizations captures the table and period preferences. A missing
// record, or missing individual fields, fall back to DefaultCustomizations.
type Customizations struct {
	OnlyShowPrjWithGoals           bool   `json:"onlyShowPrjWithGoals"`
	Order                          string `json:"order"`
	OrderBy                        string `json:"orderBy"`
	TrackingPeriodType             string `json:"trackingPeriodType"`
	TrackingPeriodStartCustomValue string `json:"trackingPeriodStartCustomValue"`
	TrackingPeriodEndCustomValue   string `json:"trackingPeriodEndCustomValue"`
}

// DefaultCustomizations returns the fixed default preferences.
func DefaultCustomizations() Customizations {
	return Customizations{
		OnlyShowPrjWithGoals: false,
		Order:                "asc",
		OrderBy:              "project",
		TrackingPeriodType:   string(period.Weekly),
	}
}

// CustomizationsPatch is a partial update; nil fields are left untouched by
// StoreCustomizations.
type CustomizationsPatch struct {
	OnlyShowPrjWithGoals           *bool
	Order                          *string
	OrderBy                        *string
	TrackingPeriodType             *string
	TrackingPeriodStartCustomValue *string
	TrackingPeriodEndCustomValue   *string
}

func (p CustomizationsPatch) apply(c *Customizations) {
	if p.OnlyShowPrjWithGoals != nil {
		c.OnlyShowPrjWithGoals = *p.OnlyShowPrjWithGoals
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
	if p.OrderBy != nil {
		c.OrderBy = *p.OrderBy
	}
	if p.TrackingPeriodType != nil {
		c.TrackingPeriodType = *p.TrackingPeriodType
	}
	if p.TrackingPeriodStartCustomValue != nil {
		c.TrackingPeriodStartCustomValue = *p.TrackingPeriodStartCustomValue
	}
	if p.TrackingPeriodEndCustomValue != nil {
		c.TrackingPeriodEndCustomValue = *p.TrackingPeriodEndCustomValue
	}
}

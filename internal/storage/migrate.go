package storage

import "github.com/sadopc/togoal/internal/period"

// Records written by releases before the per-period schema carry only the
// legacy scalar goal/recordedTime fields. Migration happens in two places:
// reads synthesize a per-period view on the fly without touching the stored
// record, and writes seed the sub-record once before setting fields. Both
// are idempotent and neither mutates the legacy scalars.

// ForPeriod returns the goal/recordedTime view for one tracking period. If
// the sub-record exists it is returned as stored; otherwise a view is
// synthesized from the legacy scalars, leaving fields the legacy record
// never had unset. The receiver is not modified.
func (p *ProjectStatus) ForPeriod(t period.Type) PeriodStatus {
	if sub := *p.periodSlot(t); sub != nil {
		return *sub
	}
	var view PeriodStatus
	if p.Goal != nil {
		g := *p.Goal
		view.Goal = &g
	}
	if p.RecordedTime != nil {
		r := *p.RecordedTime
		view.RecordedTime = &r
	}
	return view
}

// seedPeriod installs the sub-record for t if absent, copying the legacy
// scalars over. Called on the write path only; a later save persists the
// seeded record.
func (p *ProjectStatus) seedPeriod(t period.Type) *PeriodStatus {
	slot := p.periodSlot(t)
	if *slot == nil {
		seeded := p.ForPeriod(t)
		*slot = &seeded
	}
	return *slot
}

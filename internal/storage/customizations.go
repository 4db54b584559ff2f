package storage

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// LoadCustomizations never fails with a "missing" condition: an absent
// record yields the defaults, and individual fields missing from a stored
// record (written by an older release) are repaired to their defaults.
func (s *Store) LoadCustomizations(ctx context.Context) (Customizations, error) {
	raw, ok, err := s.kv.Get(ctx, customizationsRootKey)
	if err != nil {
		return DefaultCustomizations(), err
	}
	if !ok {
		return DefaultCustomizations(), nil
	}
	var cust Customizations
	if err := json.Unmarshal(raw, &cust); err != nil {
		return DefaultCustomizations(), fmt.Errorf("decode customizations: %w", err)
	}
	repairCustomizations(&cust)
	return cust, nil
}

// StoreCustomizations merges the patch onto the current record (or the
// defaults) and writes the result back. Fields the patch leaves nil are
// never destroyed.
func (s *Store) StoreCustomizations(ctx context.Context, patch CustomizationsPatch) error {
	cust, err := s.LoadCustomizations(ctx)
	if err != nil {
		return err
	}
	patch.apply(&cust)

	raw, err := json.Marshal(cust)
	if err != nil {
		return fmt.Errorf("encode customizations: %w", err)
	}
	return s.kv.Set(ctx, customizationsRootKey, raw)
}

// repairCustomizations fills enumerated fields an older record may lack.
// The boolean and the custom date values legitimately hold their zero
// values, so only the enumerations are touched.
func repairCustomizations(c *Customizations) {
	def := DefaultCustomizations()
	if c.Order == "" {
		c.Order = def.Order
	}
	if c.OrderBy == "" {
		c.OrderBy = def.OrderBy
	}
	if c.TrackingPeriodType == "" {
		c.TrackingPeriodType = def.TrackingPeriodType
	}
}

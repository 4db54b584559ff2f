package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrNotConfigured is returned by LoadOptions when no options record has
// ever been saved. It is an expected condition: the caller should prompt the
// user to configure, not crash.
var ErrNotConfigured = errors.New("no options stored")

// LoadOptions returns the saved options, or ErrNotConfigured when absent.
func (s *Store) LoadOptions(ctx context.Context) (Options, error) {
	raw, ok, err := s.kv.Get(ctx, optionsRootKey)
	if err != nil {
		return Options{}, err
	}
	if !ok {
		return Options{}, ErrNotConfigured
	}
	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// StoreOptions overwrites the full options record.
func (s *Store) StoreOptions(ctx context.Context, opts Options) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	return s.kv.Set(ctx, optionsRootKey, raw)
}

// Package cache persists the configuration lookup table between runs and
// decides, at start-up, whether a table is available for fast computation.
package cache

import (
	"fmt"

	"minkowski3d/internal/monitoring"
	"minkowski3d/pkg/minkowski"
)

// Store loads and saves a lookup table. Load returns (nil, nil) when nothing
// has been stored yet.
type Store interface {
	Load() (*minkowski.Table, error)
	Save(table *minkowski.Table) error
}

// UserChoice answers a yes/no question.
type UserChoice interface {
	Confirm(prompt string) (bool, error)
}

// BuildPrompt is the question asked when no stored table is found.
const BuildPrompt = "No lookup table found, generate? (Y/N): "

// Resolve returns the lookup table to use for this run. A stored table is
// used when present. Otherwise choice decides whether to build one; a freshly
// built table is saved to store. A nil result means every window will be
// classified directly. Either argument may be nil: a nil store never has a
// table and a nil choice never builds one.
func Resolve(store Store, choice UserChoice) (*minkowski.Table, error) {
	if store != nil {
		table, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load lookup table: %w", err)
		}
		if table != nil {
			monitoring.Logf("Found precomputed lookup table (%d entries), using fast computation", table.Len())
			return table, nil
		}
	}

	if choice == nil {
		monitoring.Logf("No lookup table available, using direct computation")
		return nil, nil
	}
	build, err := choice.Confirm(BuildPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to ask for table generation: %w", err)
	}
	if !build {
		monitoring.Logf("Lookup table generation declined, using direct computation")
		return nil, nil
	}

	table, err := minkowski.BuildTable()
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup table: %w", err)
	}
	monitoring.Logf("Lookup table computed (%d entries), using fast computation", table.Len())

	if store != nil {
		if err := store.Save(table); err != nil {
			monitoring.Logf("Warning: failed to save lookup table: %v", err)
		}
	}
	return table, nil
}

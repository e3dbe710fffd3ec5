// Package storage defines the seen-date store and its implementations.
package storage

import (
	"context"
	"errors"
	"fmt"

	"screening_notifier/internal/model"
)

// Supported store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrCorrupt is returned when persisted state cannot be trusted.
// Callers must treat it as fatal rather than start over with an empty set.
var ErrCorrupt = errors.New("seen store is corrupt")

// Store persists the set of dates that have already been announced.
type Store interface {
	// Load returns the stored set, or an empty set when nothing was stored yet.
	Load(ctx context.Context) (model.DateSet, error)
	// Save replaces the stored set with dates.
	Save(ctx context.Context, dates model.DateSet) error

	Close() error
}

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONFile(path), nil
	case BackendSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func parseStored(raw []string) (model.DateSet, error) {
	set := make(model.DateSet, len(raw))
	for _, s := range raw {
		id, err := model.ParseDateID(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		set.Add(id)
	}
	return set, nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"

	"screening_notifier/internal/model"
)

// JSONFile implements Store as a pretty-printed JSON array on disk.
type JSONFile struct {
	path string
}

// NewJSONFile returns a store backed by the file at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the backing file path.
func (f *JSONFile) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file yields an empty set.
func (f *JSONFile) Load(_ context.Context) (model.DateSet, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(model.DateSet), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrCorrupt, f.path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s does not hold an array", ErrCorrupt, f.path)
	}
	return parseStored(raw)
}

// Save writes the snapshot to a temp file and renames it into place, so a
// crash never leaves a truncated file behind.
func (f *JSONFile) Save(_ context.Context, dates model.DateSet) error {
	data, err := json.MarshalIndent(dates.Strings(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode seen dates: %w", err)
	}
	data = append(data, '\n')

	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (f *JSONFile) Close() error {
	return nil
}

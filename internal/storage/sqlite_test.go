package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"screening_notifier/internal/model"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteLoadEmpty(t *testing.T) {
	s := newTestDB(t)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(0, got.Len()); diff != "" {
		t.Errorf("expected empty set (-want +got):\n%s", diff)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	want := model.NewDateSet("20250101", "20250102", "20250301")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.Save(ctx, model.NewDateSet("20250101", "20250102")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(ctx, model.NewDateSet("20250102", "20250103")); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"20250102", "20250103"}, got.Strings()); diff != "" {
		t.Errorf("Save should replace contents (-want +got):\n%s", diff)
	}
}

func TestSQLiteKeepsSeenAt(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	before := time.Now().UTC().Add(-time.Second)
	if err := s.Save(ctx, model.NewDateSet("20250101")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	first, err := s.SeenAt(ctx, "20250101")
	if err != nil {
		t.Fatalf("seen at: %v", err)
	}
	if first.Before(before.Truncate(time.Second)) {
		t.Errorf("seen_at %v is before test start %v", first, before)
	}

	if err := s.Save(ctx, model.NewDateSet("20250101", "20250102")); err != nil {
		t.Fatalf("second save: %v", err)
	}
	again, err := s.SeenAt(ctx, "20250101")
	if err != nil {
		t.Fatalf("seen at: %v", err)
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("seen_at changed on resave (-want +got):\n%s", diff)
	}
}

func TestSQLiteCorruptRow(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO seen_dates (date_id, seen_at) VALUES ('bogus', '2025-01-01T00:00:00Z')`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := s.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, model.NewDateSet("20250101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"20250101"}, got.Strings()); diff != "" {
		t.Errorf("reopened store mismatch (-want +got):\n%s", diff)
	}
}

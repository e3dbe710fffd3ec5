package main

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "seen.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func runCommand(t *testing.T, db *sql.DB, command string) string {
	t.Helper()
	var out bytes.Buffer
	if err := run(context.Background(), db, command, &out); err != nil {
		t.Fatalf("%s: %v", command, err)
	}
	return out.String()
}

func TestRunUpStatusDown(t *testing.T) {
	db := openTestDB(t)

	if diff := cmp.Diff("version 0\n", runCommand(t, db, "version")); diff != "" {
		t.Errorf("initial version mismatch (-want +got):\n%s", diff)
	}
	if got := runCommand(t, db, "status"); !strings.Contains(got, "Pending") {
		t.Errorf("expected pending migration before up, got %q", got)
	}

	if got := runCommand(t, db, "up"); !strings.Contains(got, "00001_create_seen_dates.sql") {
		t.Errorf("up output missing migration name: %q", got)
	}
	if diff := cmp.Diff("version 1\n", runCommand(t, db, "version")); diff != "" {
		t.Errorf("version after up mismatch (-want +got):\n%s", diff)
	}
	if got := runCommand(t, db, "up"); !strings.Contains(got, "no migrations to apply") {
		t.Errorf("second up should be a no-op, got %q", got)
	}
	if got := runCommand(t, db, "status"); strings.Contains(got, "Pending") {
		t.Errorf("expected no pending migration after up, got %q", got)
	}

	if got := runCommand(t, db, "down"); !strings.Contains(got, "00001_create_seen_dates.sql") {
		t.Errorf("down output missing migration name: %q", got)
	}
	if diff := cmp.Diff("version 0\n", runCommand(t, db, "version")); diff != "" {
		t.Errorf("version after down mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	db := openTestDB(t)
	var out bytes.Buffer
	if err := run(context.Background(), db, "redo", &out); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

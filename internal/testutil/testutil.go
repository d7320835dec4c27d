// Package testutil provides shared test helpers for setting up seeded
// record stores.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/nordvik/timeledger/internal/models"
	"github.com/nordvik/timeledger/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically
// cleaned up.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "timeledger-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// Seed writes the given employees and projects into the store.
func Seed(t *testing.T, st *store.SQLite, employees []models.Employee, projects []models.Project) {
	t.Helper()
	ctx := context.Background()
	for _, e := range employees {
		if err := st.UpsertEmployee(ctx, e); err != nil {
			t.Fatalf("seed employee %s: %v", e.ID, err)
		}
	}
	for _, p := range projects {
		if err := st.UpsertProject(ctx, p); err != nil {
			t.Fatalf("seed project %s: %v", p.ID, err)
		}
	}
}

// StrPtr returns a pointer to s; handy for nullable record fields.
func StrPtr(s string) *string {
	return &s
}

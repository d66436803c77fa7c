package testsupport

import (
	"testing"

	"kerf/internal/config"
	"kerf/internal/convention"
	"kerf/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// WriteConvention saves entries to the config's convention path.
func WriteConvention(t testing.TB, cfg *config.Config, entries ...convention.Entry) *convention.Table {
	t.Helper()

	table, err := convention.New(entries...)
	if err != nil {
		t.Fatalf("convention.New: %v", err)
	}
	if err := convention.Save(cfg.Paths.ConventionJSON, table); err != nil {
		t.Fatalf("convention.Save: %v", err)
	}
	return table
}

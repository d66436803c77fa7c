package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"kerf/internal/history"
	"kerf/internal/testsupport"
)

func sampleRun(cutlist string) *history.Run {
	return &history.Run{
		StartedAt:      time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		CutlistPath:    cutlist,
		OutputPath:     "/jobs/To_Cutrite_260504_1030_list.csv",
		ProjectDir:     "/jobs",
		RowCount:       2,
		UnmatchedCount: 1,
		ToolDiameter:   10,
		FilesChanged:   1,
		Files: []history.FileChange{
			{Path: "/jobs/a.mpr", BackupPath: "/jobs/a.mpr.bak", Changed: true, ComponentRemoved: true, Macro124Removed: 2, LA100: 600, BR100: 400},
			{Path: "/jobs/b.mpr", Error: "permission denied"},
		},
		Rows: []history.ExportedRow{
			{UniqueID: "uid-2", Project: "P", Cabinet: "C", Reference: "Shelf"},
			{UniqueID: "uid-1", Project: "P", Cabinet: "C", Reference: "Side_Panel"},
		},
	}
}

func TestRecordAndGetRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run := sampleRun("/jobs/list.csv")
	id, err := store.Record(ctx, run)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 || run.ID != id {
		t.Fatalf("expected run id to be assigned, got %d/%d", id, run.ID)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := sampleRun("/jobs/list.csv")
	want.ID = id
	want.Rows = []history.ExportedRow{want.Rows[1], want.Rows[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}

	missing, err := store.Get(ctx, id+100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing run, got %#v %v", missing, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	for _, name := range []string{"one.csv", "two.csv", "three.csv"} {
		if _, err := store.Record(ctx, sampleRun(name)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].CutlistPath != "three.csv" || runs[1].CutlistPath != "two.csv" {
		t.Fatalf("unexpected runs %#v", runs)
	}
	if runs[0].Files != nil || runs[0].Rows != nil {
		t.Fatal("List should not load files or rows")
	}
	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d %v", len(all), err)
	}
}

func TestPreviouslyExportedReturnsLatestRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	first, err := store.Record(ctx, sampleRun("a.csv"))
	if err != nil {
		t.Fatal(err)
	}
	second := sampleRun("b.csv")
	second.Rows = second.Rows[:1]
	secondID, err := store.Record(ctx, second)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.PreviouslyExported(ctx, []string{"uid-1", "uid-2", "uid-3"})
	if err != nil {
		t.Fatalf("PreviouslyExported: %v", err)
	}
	want := map[string]int64{"uid-1": first, "uid-2": secondID}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("exported mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

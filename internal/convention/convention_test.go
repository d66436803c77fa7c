package convention

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := New(
		Entry{Component: "Side_Panel", Face1: "Outside", Face2: "Inside", Edge0: "E0", Edge1: "E1", Edge2NoConnect: "E2N", Edge2Connect: "E2C", Edge3: "E3", Edge4: "E4"},
		Entry{Component: "Drawers Side", Face1: "DS1", Face2: "DS2"},
		Entry{Component: "Drawers (Frontage)", Face1: "DF1"},
		Entry{Component: "Doors (Double)", Face1: "DD1"},
		Entry{Component: "Single Doors (Open Side)", Face1: "SO1"},
		Entry{Component: "Single Doors (Fitting Side)", Face1: "SF1"},
		Entry{Component: "Shelf", Face1: "Top"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return table
}

func TestTableCRUDEnforcesComponentRules(t *testing.T) {
	table := sampleTable(t)

	if err := table.Add(Entry{Component: "  "}); !errors.Is(err, ErrMissingComponent) {
		t.Fatalf("expected ErrMissingComponent, got %v", err)
	}
	if err := table.Add(Entry{Component: "side_panel"}); !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("expected ErrDuplicateComponent, got %v", err)
	}
	if err := table.Update("shelf", Entry{Component: "Side_Panel"}); !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("expected duplicate on rename, got %v", err)
	}
	if err := table.Update("Shelf", Entry{Component: "Shelf", Face1: "Upper"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if e, ok := table.Find("SHELF"); !ok || e.Face1 != "Upper" {
		t.Fatalf("unexpected entry after update: %+v", e)
	}
	if err := table.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := table.Delete("shelf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := table.Find("Shelf"); ok {
		t.Fatal("expected Shelf deleted")
	}
	if table.Len() != 6 {
		t.Fatalf("expected 6 entries, got %d", table.Len())
	}
}

func TestMatchPriorities(t *testing.T) {
	table := sampleTable(t)
	tests := []struct {
		reference string
		want      string
		ok        bool
	}{
		{"L Side Drawer [2]", "Drawers Side", true},
		{"Drawer Front", "Drawers (Frontage)", true},
		{"Door Double Left", "Doors (Double)", true},
		{"Door Single Open", "Single Doors (Open Side)", true},
		{"Door Single", "Single Doors (Fitting Side)", true},
		{"Side_Panel", "Side_Panel", true},
		{"Side_Panel [3]", "Side_Panel", true},
		{"Left Side_Panel", "Side_Panel", true},
		{"shelf low", "Shelf", true},
		{"Plinth", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := table.Match(tc.reference)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Match(%q) = %q, %v; want %q, %v", tc.reference, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatchNamedRulesRequireEntry(t *testing.T) {
	table, err := New(Entry{Component: "Drawer"})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := table.Match("L Side Drawer")
	if !ok || got != "Drawer" {
		t.Fatalf("expected containment fallback, got %q %v", got, ok)
	}
}

func TestLoadMissingFileCreatesEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "convention.json")
	table, warnings, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 0 || len(warnings) != 0 {
		t.Fatalf("expected empty table, got %d entries %v", table.Len(), warnings)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("unexpected empty file content %q", data)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convention.json")
	table := sampleTable(t)
	if err := Save(path, table); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  {\n    \"Component\": \"Side_Panel\"") {
		t.Fatalf("expected two-space indented records, got %s", data)
	}
	if !strings.Contains(string(data), "Drawers (Frontage)") {
		t.Fatalf("expected unescaped component names, got %s", data)
	}

	loaded, warnings, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if diff := cmp.Diff(table.Entries(), loaded.Entries()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFillsMissingColumnsAndAcceptsKeyedObject(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "records.json")
	if err := os.WriteFile(records, []byte(`[{"Component":"Back","Face_1":"Rear","Edge_0":null,"Edge_1":3}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	table, warnings, err := Load(records, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Edge_2_connect") {
		t.Fatalf("expected missing-column warning, got %v", warnings)
	}
	want := Entry{Component: "Back", Face1: "Rear", Edge1: "3"}
	if diff := cmp.Diff([]Entry{want}, table.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	keyed := filepath.Join(dir, "keyed.json")
	payload := `{"Top": {"Face_1": "Up", "Face_2": "Down", "Edge_0": "a", "Edge_1": "b", "Edge_2_no_connect": "c", "Edge_2_connect": "d", "Edge_3": "e", "Edge_4": "f"}}`
	if err := os.WriteFile(keyed, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	table, warnings, err = Load(keyed, nil)
	if err != nil {
		t.Fatalf("Load keyed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	e, ok := table.Lookup("Top")
	if !ok || e.Edge2Connect != "d" || e.Face2 != "Down" {
		t.Fatalf("unexpected keyed entry %+v", e)
	}
}

func TestLoadRejectsDuplicateComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.json")
	if err := os.WriteFile(path, []byte(`[{"Component":"A"},{"Component":"a"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path, nil); !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("expected ErrDuplicateComponent, got %v", err)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convention.xlsx")
	table := sampleTable(t)
	if err := ExportXLSX(path, table); err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	imported, err := ImportXLSX(path)
	if err != nil {
		t.Fatalf("ImportXLSX: %v", err)
	}
	if diff := cmp.Diff(table.Entries(), imported.Entries()); diff != "" {
		t.Fatalf("xlsx round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportXLSXRequiresAllColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	table, err := New(Entry{Component: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if err := ExportXLSX(path, table); err != nil {
		t.Fatal(err)
	}
	// Overwrite the Edge_4 header.
	if err := overwriteCell(path, "I1", "Other"); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportXLSX(path); err == nil || !strings.Contains(err.Error(), "Edge_4") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ListImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.PNG")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
	if none, err := ListImages(filepath.Join(dir, "missing")); err != nil || len(none) != 0 {
		t.Fatalf("expected no images for missing dir, got %v %v", none, err)
	}
}

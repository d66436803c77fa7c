package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kerf/internal/convention"
	"kerf/internal/fileutil"
	"kerf/internal/testsupport"
)

func seedConvention(t *testing.T, env *cliTestEnv) {
	t.Helper()
	testsupport.WriteConvention(t, env.cfg, convention.Entry{
		Component:    "Side_Panel",
		Face1:        "Outside",
		Edge2Connect: "SP-2C",
	})
}

func TestCutlistPreviewReportsUnmatched(t *testing.T) {
	env := setupCLITestEnv(t)
	seedConvention(t, env)
	_, cutlistPath := writeJob(t, env)

	out, stderr, err := runCLI(t, []string{"cutlist", "preview", cutlistPath}, env.configPath)
	if err != nil {
		t.Fatalf("cutlist preview: %v", err)
	}
	requireContains(t, out, "SP-2C")
	requireContains(t, out, "Plinth")
	requireContains(t, stderr, "Plinth")
}

func TestCutlistPreviewWithMPRJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedConvention(t, env)
	_, cutlistPath := writeJob(t, env)

	out, _, err := runCLI(t, []string{"--json", "cutlist", "preview", "--mpr", cutlistPath}, env.configPath)
	if err != nil {
		t.Fatalf("cutlist preview --mpr: %v", err)
	}
	var payload struct {
		Rows []map[string]string `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode preview: %v\n%s", err, out)
	}
	if len(payload.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(payload.Rows))
	}
	first := payload.Rows[0]
	if first["Edging_Diagram"] != "SP-2C" || first["Edge_Band_Count"] != "2" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if !strings.Contains(first["MPR_Process_Summary"], "Saw_Grooving:1") {
		t.Fatalf("process summary %q missing saw grooving", first["MPR_Process_Summary"])
	}
}

func TestCutlistExportRewritesAndRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	seedConvention(t, env)
	dir, cutlistPath := writeJob(t, env)
	output := filepath.Join(dir, "final.csv")
	mprPath := filepath.Join(dir, "a.mpr")
	original := testsupport.ReadFile(t, mprPath)

	out, _, err := runCLI(t, []string{"cutlist", "export", "--dry-run", "-o", output, cutlistPath}, env.configPath)
	if err != nil {
		t.Fatalf("cutlist export --dry-run: %v", err)
	}
	requireContains(t, out, "a.mpr")
	requireContains(t, out, "Dry run")
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote output: %v", err)
	}

	out, _, err = runCLIWithInput(t, []string{"cutlist", "export", "-o", output, cutlistPath}, env.configPath, "no\n")
	if err != nil {
		t.Fatalf("cutlist export declined: %v", err)
	}
	requireContains(t, out, "Export cancelled")
	if got := testsupport.ReadFile(t, mprPath); got != original {
		t.Fatal("declined export modified the program")
	}

	out, _, err = runCLI(t, []string{"cutlist", "export", "--yes", "-o", output, cutlistPath}, env.configPath)
	if err != nil {
		t.Fatalf("cutlist export: %v", err)
	}
	requireContains(t, out, "Wrote "+output)

	if got := testsupport.ReadFile(t, fileutil.BackupPath(mprPath)); got != original {
		t.Fatal("backup does not hold the original program")
	}
	rewritten := testsupport.ReadFile(t, mprPath)
	requireNotContains(t, rewritten, "Komponente")
	requireContains(t, rewritten, "<151 ")
	requireContains(t, testsupport.ReadFile(t, output), "Unique_ID")

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "list.csv")

	out, _, err = runCLI(t, []string{"history", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "a.mpr")

	_, stderr, err := runCLI(t, []string{"cutlist", "export", "--dry-run", "-o", output, cutlistPath}, env.configPath)
	if err != nil {
		t.Fatalf("second dry run: %v", err)
	}
	requireContains(t, stderr, "already exported")
}

func TestCutlistExportNeedsConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)
	seedConvention(t, env)
	_, cutlistPath := writeJob(t, env)

	cmd := newRootCommand()
	stdin, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer stdin.Close()
	cmd.SetIn(stdin)
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	cmd.SetArgs([]string{"--config", env.configPath, "cutlist", "export", cutlistPath})
	if err := cmd.Execute(); err != errNeedsConfirmation {
		t.Fatalf("err = %v, want errNeedsConfirmation", err)
	}
}

func TestCutlistExportMissingProgram(t *testing.T) {
	env := setupCLITestEnv(t)
	seedConvention(t, env)
	dir, cutlistPath := writeJob(t, env)
	if err := os.Remove(filepath.Join(dir, "nested", "b.mpr")); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, []string{"cutlist", "export", "--yes", cutlistPath}, env.configPath)
	if err == nil {
		t.Fatal("expected missing program error")
	}
	requireContains(t, err.Error(), "b.mpr")
	if _, statErr := os.Stat(fileutil.BackupPath(filepath.Join(dir, "a.mpr"))); !os.IsNotExist(statErr) {
		t.Fatalf("backup created despite missing program: %v", statErr)
	}
}

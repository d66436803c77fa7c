package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"kerf/internal/fileutil"
	"kerf/internal/testsupport"
)

func TestMPRInspect(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, _ := writeJob(t, env)

	out, _, err := runCLI(t, []string{"mpr", "inspect", filepath.Join(dir, "a.mpr")}, env.configPath)
	if err != nil {
		t.Fatalf("mpr inspect: %v", err)
	}
	requireContains(t, out, "Saw_Grooving")
	requireContains(t, out, "600.0")

	out, _, err = runCLI(t, []string{"--json", "mpr", "inspect", filepath.Join(dir, "a.mpr")}, env.configPath)
	if err != nil {
		t.Fatalf("mpr inspect --json: %v", err)
	}
	var payload struct {
		LA100     float64 `json:"la_100"`
		Component bool    `json:"component_block"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode inspect: %v\n%s", err, out)
	}
	if payload.LA100 != 600 || !payload.Component {
		t.Fatalf("unexpected inspect payload: %+v", payload)
	}
}

func TestMPRRewriteDryRunThenApply(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, _ := writeJob(t, env)
	path := filepath.Join(dir, "a.mpr")
	original := testsupport.ReadFile(t, path)

	out, _, err := runCLI(t, []string{"mpr", "rewrite", path}, env.configPath)
	if err != nil {
		t.Fatalf("mpr rewrite: %v", err)
	}
	requireContains(t, out, "component removed")
	requireContains(t, out, "Dry run")
	if testsupport.ReadFile(t, path) != original {
		t.Fatal("dry run modified the program")
	}

	out, _, err = runCLI(t, []string{"mpr", "rewrite", "--apply", "--yes", path}, env.configPath)
	if err != nil {
		t.Fatalf("mpr rewrite --apply: %v", err)
	}
	requireContains(t, out, "Rewritten")
	requireNotContains(t, testsupport.ReadFile(t, path), "Komponente")
	if testsupport.ReadFile(t, fileutil.BackupPath(path)) != original {
		t.Fatal("backup does not hold the original program")
	}

	out, _, err = runCLI(t, []string{"mpr", "restore", path}, env.configPath)
	if err != nil {
		t.Fatalf("mpr restore: %v", err)
	}
	requireContains(t, out, "restored")
	if testsupport.ReadFile(t, path) != original {
		t.Fatal("restore did not bring back the original program")
	}
}

func TestMPRRewriteUnchangedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "plain.mpr")
	testsupport.WriteFile(t, path, testsupport.MPRProgram(testsupport.MPRWorkpiece))

	out, _, err := runCLI(t, []string{"mpr", "rewrite", "--apply", "--yes", path}, env.configPath)
	if err != nil {
		t.Fatalf("mpr rewrite: %v", err)
	}
	requireContains(t, out, "no changes")
}

func TestMPRRewriteRejectsNegativeToolDiameter(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, _ := writeJob(t, env)
	path := filepath.Join(dir, "a.mpr")
	original := testsupport.ReadFile(t, path)

	_, _, err := runCLI(t, []string{"mpr", "rewrite", "--apply", "--yes", "--tool-diameter", "-4", path}, env.configPath)
	if err == nil {
		t.Fatal("expected a negative tool diameter to be rejected")
	}
	requireContains(t, err.Error(), "non-negative")
	if testsupport.ReadFile(t, path) != original {
		t.Fatal("rejected rewrite modified the program")
	}
}

func TestMPRRewriteKeepsEarlierBackup(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, _ := writeJob(t, env)
	path := filepath.Join(dir, "a.mpr")
	original := testsupport.ReadFile(t, path)
	testsupport.WriteFile(t, fileutil.BackupPath(path), "OLD PROGRAM\n")

	out, _, err := runCLI(t, []string{"mpr", "rewrite", "--apply", "--yes", path}, env.configPath)
	if err != nil {
		t.Fatalf("mpr rewrite --apply: %v", err)
	}
	requireContains(t, out, "Earlier backup kept at")
	if testsupport.ReadFile(t, fileutil.BackupPath(path)) != original {
		t.Fatal("backup does not hold the program that was replaced")
	}
	if testsupport.ReadFile(t, fileutil.PristinePath(path)) != "OLD PROGRAM\n" {
		t.Fatal("earlier backup was not kept")
	}
}

func TestMPRClean(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, _ := writeJob(t, env)

	out, _, err := runCLI(t, []string{"mpr", "clean", "--yes", dir}, env.configPath)
	if err != nil {
		t.Fatalf("mpr clean: %v", err)
	}
	requireContains(t, out, "a.mpr")
	requireContains(t, out, "cleaned")
	requireNotContains(t, testsupport.ReadFile(t, filepath.Join(dir, "a.mpr")), "Komponente")

	out, _, err = runCLI(t, []string{"mpr", "clean", "--yes", dir}, env.configPath)
	if err != nil {
		t.Fatalf("second mpr clean: %v", err)
	}
	requireContains(t, out, "No MPR files contain the component block")
}

func TestMPRRestoreWithoutBackupFails(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "plain.mpr")
	testsupport.WriteFile(t, path, testsupport.MPRProgram(testsupport.MPRWorkpiece))

	out, _, err := runCLI(t, []string{"mpr", "restore", path}, env.configPath)
	if err == nil {
		t.Fatal("expected restore without backup to fail")
	}
	requireContains(t, out, "ERROR")
}

func TestMPRReference(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"mpr", "reference", "109"}, env.configPath)
	if err != nil {
		t.Fatalf("mpr reference 109: %v", err)
	}
	requireContains(t, out, `<109 \Nuten\`)

	out, _, err = runCLI(t, []string{"mpr", "reference", "--search", "pocket"}, env.configPath)
	if err != nil {
		t.Fatalf("mpr reference --search: %v", err)
	}
	requireContains(t, out, "Tasche")

	if _, _, err := runCLI(t, []string{"mpr", "reference", "999"}, env.configPath); err == nil {
		t.Fatal("expected unknown macro to fail")
	}
}

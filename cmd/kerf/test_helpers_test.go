package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kerf/internal/config"
	"kerf/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithToolDiameter(12), testsupport.WithHistory(true))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("KERF_CONVENTION", "")

	configPath := filepath.Join(homeDir, ".config", "kerf", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, input string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nconvention_json = %q\nedge_dir = %q\ndata_dir = %q\nlog_dir = %q\nprefs_path = %q\n\n"+
			"[export]\ntool_diameter = %v\n\n[history]\nenabled = %t\n",
		cfg.Paths.ConventionJSON,
		cfg.Paths.EdgeDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.PrefsPath,
		cfg.Export.ToolDiameter,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeJob lays out a project folder with one cutlist and two programs.
func writeJob(t *testing.T, env *cliTestEnv) (dir, cutlistPath string) {
	t.Helper()
	dir = filepath.Join(env.baseDir, "job")
	testsupport.WriteFile(t, filepath.Join(dir, "a.mpr"), testsupport.MPRProgram(
		testsupport.MPRWorkpiece,
		testsupport.MPRComponent,
		testsupport.MPRAngleGroove,
		testsupport.MPRGrooveBelow,
	))
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "b.mpr"), testsupport.MPRProgram(
		testsupport.MPRWorkpiece,
		testsupport.MPRGrooveTop,
	))
	lines := []string{
		testsupport.CutlistLine("Side_Panel", "Oak", "720", "560", "1", "1", "1", "", "", "1", "1", "Kitchen", "Base", "722", "562", "a.mpr", "", "18", "1"),
		testsupport.CutlistLine("Plinth", "Oak", "100", "560", "1", "0", "", "", "", "", "2", "Kitchen", "Base", "102", "562", "b.mpr", "", "18", "2"),
	}
	cutlistPath = filepath.Join(dir, "list.csv")
	testsupport.WriteFile(t, cutlistPath, strings.Join(lines, "\n")+"\n")
	return dir, cutlistPath
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"kerf/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KERF_CONVENTION", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantConvention := filepath.Join(tempHome, ".config", "kerf", "convention.json")
	if cfg.Paths.ConventionJSON != wantConvention {
		t.Fatalf("unexpected convention path: got %q want %q", cfg.Paths.ConventionJSON, wantConvention)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, ".local", "share", "kerf") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Export.ToolDiameter != 10.0 {
		t.Fatalf("expected default tool diameter 10, got %v", cfg.Export.ToolDiameter)
	}
	if !cfg.Export.RemoveMacro124 {
		t.Fatal("expected macro 124 removal enabled by default")
	}
	if cfg.Export.OutputPrefix != "To_Cutrite" {
		t.Fatalf("unexpected output prefix: %q", cfg.Export.OutputPrefix)
	}
	if cfg.MPR.ComponentTag != `<139 \Komponente\` {
		t.Fatalf("unexpected component tag: %q", cfg.MPR.ComponentTag)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if got := cfg.HistoryPath(); got != filepath.Join(cfg.Paths.DataDir, "history.db") {
		t.Fatalf("unexpected history path: %q", got)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KERF_CONVENTION", "")

	configPath := filepath.Join(t.TempDir(), "kerf.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"convention_json": "~/shop/convention.json",
			"data_dir":        "~/shop/data",
		},
		"export": map[string]any{
			"tool_diameter":    8.5,
			"remove_macro_124": false,
			"output_prefix":    " Saw ",
		},
		"mpr": map[string]any{
			"below_tool_pattern": `^K\d+$`,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "DEBUG",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ConventionJSON != filepath.Join(tempHome, "shop", "convention.json") {
		t.Fatalf("unexpected convention path: %q", cfg.Paths.ConventionJSON)
	}
	if cfg.Export.ToolDiameter != 8.5 {
		t.Fatalf("unexpected tool diameter: %v", cfg.Export.ToolDiameter)
	}
	if cfg.Export.RemoveMacro124 {
		t.Fatal("expected macro 124 removal disabled")
	}
	if cfg.Export.OutputPrefix != "Saw" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.Export.OutputPrefix)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	re := cfg.BelowToolPattern()
	if !re.MatchString("K12") || re.MatchString("AAAA2") {
		t.Fatalf("custom below-tool pattern not applied: %s", re)
	}
}

func TestConventionEnvOverridesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	override := filepath.Join(t.TempDir(), "custom.json")
	t.Setenv("KERF_CONVENTION", override)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.ConventionJSON != override {
		t.Fatalf("expected env override %q, got %q", override, cfg.Paths.ConventionJSON)
	}
}

func TestDefaultBelowToolPattern(t *testing.T) {
	cfg := config.Default()
	re := cfg.BelowToolPattern()
	cases := map[string]bool{
		"AAAA2":   true,
		"ABCDE2":  true,
		"AAAA1":   false,
		"AAA2":    false,
		"ABCDEF2": false,
	}
	for tool, want := range cases {
		if got := re.MatchString(tool); got != want {
			t.Errorf("MatchString(%q) = %v, want %v", tool, got, want)
		}
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, want := range []string{"[paths]", "[export]", "tool_diameter", "[mpr]", "below_tool_pattern"} {
		if !strings.Contains(content, want) {
			t.Fatalf("sample config missing %q", want)
		}
	}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("KERF_CONVENTION", "")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.MPR.ComponentTag != `<139 \Komponente\` {
		t.Fatalf("unexpected component tag from sample: %q", cfg.MPR.ComponentTag)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "negative diameter",
			mutate: func(c *config.Config) { c.Export.ToolDiameter = -1 },
			want:   "export.tool_diameter",
		},
		{
			name:   "prefix with separator",
			mutate: func(c *config.Config) { c.Export.OutputPrefix = "a/b" },
			want:   "export.output_prefix",
		},
		{
			name:   "component tag",
			mutate: func(c *config.Config) { c.MPR.ComponentTag = "139" },
			want:   "mpr.component_tag",
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsBadPattern(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "kerf.toml")
	if err := os.WriteFile(path, []byte("[mpr]\nbelow_tool_pattern = '(['\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "below_tool_pattern") {
		t.Fatalf("expected pattern error, got %v", err)
	}
}

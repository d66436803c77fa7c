package testsupport

import (
	"path/filepath"
	"testing"

	"kerf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ConventionJSON = filepath.Join(base, "config", "convention.json")
	cfgVal.Paths.EdgeDir = filepath.Join(base, "config", "edge_diagrams")
	cfgVal.Paths.PrefsPath = filepath.Join(base, "config", "prefs.json")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithToolDiameter overrides the export tool diameter.
func WithToolDiameter(d float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.ToolDiameter = d
	}
}

// WithHistory toggles the export ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithRemoveMacro124 toggles macro-124 stripping.
func WithRemoveMacro124(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.RemoveMacro124 = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

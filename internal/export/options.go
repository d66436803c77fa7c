package export

import (
	"path/filepath"
	"regexp"
	"time"

	"kerf/internal/config"
	"kerf/internal/mpr"
)

// LockFileName is created in the project folder while Apply runs.
const LockFileName = ".kerf.lock"

// Options controls one export.
type Options struct {
	CutlistPath string
	// ProjectDir is searched for MPR files. Empty uses the cutlist's folder.
	ProjectDir string
	// OutputPath overrides the generated output file name.
	OutputPath string

	ToolDiameter   float64
	RemoveMacro124 bool
	BelowTool      *regexp.Regexp
	ComponentTag   string
	SkipDisabled   bool
	OutputPrefix   string

	// Now is used for the output file name; nil uses time.Now.
	Now func() time.Time
}

// OptionsFromConfig fills export options from configuration.
func OptionsFromConfig(cfg *config.Config, cutlistPath string) Options {
	return Options{
		CutlistPath:    cutlistPath,
		ToolDiameter:   cfg.Export.ToolDiameter,
		RemoveMacro124: cfg.Export.RemoveMacro124,
		BelowTool:      cfg.BelowToolPattern(),
		ComponentTag:   cfg.MPR.ComponentTag,
		SkipDisabled:   cfg.MPR.SkipDisabled,
		OutputPrefix:   cfg.Export.OutputPrefix,
	}
}

func (o Options) projectDir() string {
	if o.ProjectDir != "" {
		return o.ProjectDir
	}
	return filepath.Dir(o.CutlistPath)
}

func (o Options) outputPath() string {
	if o.OutputPath != "" {
		return o.OutputPath
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return filepath.Join(filepath.Dir(o.CutlistPath), outputName(o.OutputPrefix, o.CutlistPath, now()))
}

func (o Options) rewriteOptions() mpr.Options {
	return mpr.Options{
		ToolDiameter:   o.ToolDiameter,
		RemoveMacro124: o.RemoveMacro124,
		BelowTool:      o.BelowTool,
		ComponentTag:   o.ComponentTag,
	}
}

func (o Options) analyzeOptions() mpr.AnalyzeOptions {
	return mpr.AnalyzeOptions{SkipDisabled: o.SkipDisabled, BelowTool: o.BelowTool}
}

package preflight

import (
	"context"
	"path/filepath"

	"kerf/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinFreeBytes is the free space required in a project folder before an
// export writes backups and rewritten files.
const MinFreeBytes = 50 << 20

// RunAll executes the configuration checks plus the project checks when
// projectDir is set.
func RunAll(ctx context.Context, cfg *config.Config, projectDir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckConventionFile(cfg.Paths.ConventionJSON),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.EdgeDir != "" {
		results = append(results, CheckOptionalDirectory("Edge diagrams", cfg.Paths.EdgeDir))
	}
	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.HistoryPath()))
	}
	if projectDir != "" {
		results = append(results, RunProject(projectDir)...)
	}
	return results
}

// RunProject checks that a project folder can take backups and rewrites.
func RunProject(projectDir string) []Result {
	return []Result{
		CheckDirectoryAccess("Project folder", projectDir),
		CheckFreeSpace("Project disk space", projectDir, MinFreeBytes),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func parentDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}

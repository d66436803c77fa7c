package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kerf/internal/cutlist"
	"kerf/internal/fileutil"
	"kerf/internal/history"
	"kerf/internal/logging"
)

// ErrNotConfirmed is returned when Apply is called without confirmation.
var ErrNotConfirmed = errors.New("export not confirmed")

// ErrModified is recorded for files that changed on disk after Prepare.
var ErrModified = errors.New("file changed since preview")

// Recorder stores completed runs.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) (int64, error)
}

// FileOutcome is what Apply did to one MPR file.
type FileOutcome struct {
	Name          string
	Path          string
	BackupPath string
	// RotatedPath is set when an older backup was moved aside to keep it.
	RotatedPath string
	Written     bool
	Err         error
}

// Outcome summarises an applied export.
type Outcome struct {
	OutputPath string
	Files      []FileOutcome
	RunID      int64
}

// Written counts rewritten MPR files.
func (o *Outcome) Written() int {
	n := 0
	for _, f := range o.Files {
		if f.Written {
			n++
		}
	}
	return n
}

// Failed returns the files that could not be rewritten.
func (o *Outcome) Failed() []FileOutcome {
	var out []FileOutcome
	for _, f := range o.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Apply backs up and overwrites every changed MPR file, then writes the
// output cutlist and records the run when recorder is non-nil. A file that
// cannot be backed up is left untouched. Apply stops before writing the
// cutlist when any MPR write failed.
func Apply(ctx context.Context, plan *Plan, confirmed bool, recorder Recorder, logger *slog.Logger) (*Outcome, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	logger = logging.NewComponentLogger(logger, "export")

	lock, err := fileutil.TryLock(filepath.Join(plan.ProjectDir, LockFileName))
	if err != nil {
		return nil, fmt.Errorf("lock project folder: %w", err)
	}
	defer lock.Unlock()

	outcome := &Outcome{OutputPath: plan.OutputPath}
	var failed int
	for _, f := range plan.Files {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		if !f.Changed() {
			continue
		}
		fo := applyFile(f)
		if fo.Err != nil {
			failed++
			logging.WarnWithContext(logger, "mpr rewrite failed",
				"mpr_write_failed",
				logging.String(logging.FieldFile, f.Path),
				logging.Error(fo.Err),
				logging.String(logging.FieldErrorHint, "restore from the .bak file if the program looks wrong"),
			)
		} else {
			logger.Info("mpr rewritten",
				logging.String(logging.FieldFile, f.Path),
				logging.String("backup", fo.BackupPath),
				logging.String("rotated", fo.RotatedPath),
			)
		}
		outcome.Files = append(outcome.Files, fo)
	}
	if failed > 0 {
		return outcome, fmt.Errorf("%d mpr file(s) could not be rewritten; cutlist not written", failed)
	}

	if err := cutlist.WriteFile(plan.OutputPath, plan.Cutlist.Rows); err != nil {
		return outcome, err
	}
	logger.Info("cutlist exported",
		logging.String(logging.FieldFile, plan.OutputPath),
		logging.Int("rows", len(plan.Cutlist.Rows)),
		logging.Int("mpr_written", outcome.Written()),
	)

	if recorder != nil {
		id, err := recorder.Record(ctx, plan.run(outcome))
		if err != nil {
			logging.WarnWithContext(logger, "history record failed",
				"history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run kerf doctor to check the history ledger"),
			)
		} else {
			outcome.RunID = id
		}
	}
	return outcome, nil
}

func applyFile(f FilePlan) FileOutcome {
	fo := ReplaceFile(f.Path, f.original, f.encoded)
	fo.Name = f.Name
	return fo
}

// ReplaceFile overwrites path with updated when it still holds original. The
// bytes re-read from disk are written to the .bak sibling first. Callers
// hold the project lock.
func ReplaceFile(path string, original, updated []byte) FileOutcome {
	fo := FileOutcome{Name: filepath.Base(path), Path: path}
	current, err := os.ReadFile(path)
	if err != nil {
		fo.Err = fmt.Errorf("reread: %w", err)
		return fo
	}
	if !bytes.Equal(current, original) {
		fo.Err = ErrModified
		return fo
	}
	backup, rotated, err := fileutil.Backup(path, current)
	if err != nil {
		fo.Err = err
		return fo
	}
	fo.BackupPath = backup
	fo.RotatedPath = rotated
	if err := fileutil.WriteFileAtomic(path, updated); err != nil {
		fo.Err = fmt.Errorf("overwrite: %w", err)
		return fo
	}
	fo.Written = true
	return fo
}

func (p *Plan) run(outcome *Outcome) *history.Run {
	run := &history.Run{
		StartedAt:      p.startedAt(),
		CutlistPath:    p.Options.CutlistPath,
		OutputPath:     p.OutputPath,
		ProjectDir:     p.ProjectDir,
		RowCount:       len(p.Cutlist.Rows),
		UnmatchedCount: len(p.Report.Unmatched),
		ToolDiameter:   p.Options.ToolDiameter,
		FilesChanged:   outcome.Written(),
	}
	written := map[string]FileOutcome{}
	for _, fo := range outcome.Files {
		written[fo.Path] = fo
	}
	for _, f := range p.Files {
		fc := history.FileChange{
			Path:  f.Path,
			Error: f.Error,
			LA100: f.Result.LA100,
			BR100: f.Result.BR100,
		}
		if fo, ok := written[f.Path]; ok {
			fc.Changed = fo.Written
			fc.BackupPath = fo.BackupPath
			if fo.Err != nil {
				fc.Error = fo.Err.Error()
			}
		}
		if f.Error == "" {
			a := f.Result.Actions
			fc.ComponentRemoved = a.ComponentRemoved
			fc.Macro124Removed = a.Macro124Removed
			fc.Conversions = len(a.Conversions)
		}
		run.Files = append(run.Files, fc)
	}
	for _, row := range p.Cutlist.Rows {
		run.Rows = append(run.Rows, history.ExportedRow{
			UniqueID:  row.UniqueID,
			Project:   row.Get(cutlist.ColProject),
			Cabinet:   row.Get(cutlist.ColCabinet),
			Reference: row.Reference(),
		})
	}
	return run
}

package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kerf/internal/fileutil"
	"kerf/internal/logging"
	"kerf/internal/mpr"
	"kerf/internal/project"
	"kerf/internal/textutil"
)

// CleanTarget is an MPR file that still carries the component block.
type CleanTarget struct {
	Path     string
	Blocks   int
	encoding textutil.Encoding
	original []byte
	cleaned  string
}

// FindComponentBlocks scans root for MPR files containing the component
// block. Unreadable files are skipped with a warning.
func FindComponentBlocks(ctx context.Context, root, tag string, logger *slog.Logger) ([]CleanTarget, error) {
	logger = logging.NewComponentLogger(logger, "clean")
	files, err := project.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	var targets []CleanTarget
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logging.WarnWithContext(logger, "mpr file unreadable",
				"mpr_read_failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
			)
			continue
		}
		text, enc, err := textutil.Decode(data)
		if err != nil {
			logging.WarnWithContext(logger, "mpr file undecodable",
				"mpr_decode_failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
			)
			continue
		}
		cleaned, n := mpr.RemoveComponentBlocks(text, tag)
		if n == 0 {
			continue
		}
		targets = append(targets, CleanTarget{
			Path:     path,
			Blocks:   n,
			encoding: enc,
			original: data,
			cleaned:  cleaned,
		})
	}
	logger.Debug("component scan finished",
		logging.String(logging.FieldFile, root),
		logging.Int("scanned", len(files)),
		logging.Int("matches", len(targets)),
	)
	return targets, nil
}

// CleanComponentBlocks backs up and rewrites each target. It returns the
// outcome per file; a failure on one file does not stop the others.
func CleanComponentBlocks(ctx context.Context, root string, targets []CleanTarget, confirmed bool, logger *slog.Logger) ([]FileOutcome, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	logger = logging.NewComponentLogger(logger, "clean")

	lock, err := fileutil.TryLock(filepath.Join(root, LockFileName))
	if err != nil {
		return nil, fmt.Errorf("lock project folder: %w", err)
	}
	defer lock.Unlock()

	out := make([]FileOutcome, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		fo := FileOutcome{Name: filepath.Base(t.Path), Path: t.Path}
		encoded, err := textutil.Encode(t.cleaned, t.encoding)
		if err != nil {
			fo.Err = err
			out = append(out, fo)
			continue
		}
		fo = ReplaceFile(t.Path, t.original, encoded)
		if fo.Err != nil {
			logging.WarnWithContext(logger, "component removal failed",
				"mpr_write_failed",
				logging.String(logging.FieldFile, t.Path),
				logging.Error(fo.Err),
			)
		} else {
			logger.Info("component block removed",
				logging.String(logging.FieldFile, t.Path),
				logging.Int("blocks", t.Blocks),
			)
		}
		out = append(out, fo)
	}
	return out, nil
}

// Restore copies the .bak sibling of each path back over the file.
func Restore(paths []string, logger *slog.Logger) []FileOutcome {
	logger = logging.NewComponentLogger(logger, "restore")
	out := make([]FileOutcome, 0, len(paths))
	for _, path := range paths {
		fo := FileOutcome{Name: filepath.Base(path), Path: path, BackupPath: fileutil.BackupPath(path)}
		if err := fileutil.Restore(path); err != nil {
			fo.Err = err
			logging.WarnWithContext(logger, "restore failed",
				"mpr_restore_failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
			)
		} else {
			fo.Written = true
			logger.Info("restored from backup", logging.String(logging.FieldFile, path))
		}
		out = append(out, fo)
	}
	return out
}

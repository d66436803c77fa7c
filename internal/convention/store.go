package convention

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"kerf/internal/fileutil"
	"kerf/internal/logging"
)

// Load reads the JSON sidecar at path. A missing file yields an empty table
// that is written to disk so editors and loaders share the same path.
// Records missing columns are filled with empty strings and reported as
// warnings. Both an array of records and an object keyed by Component are
// accepted.
func Load(path string, logger *slog.Logger) (*Table, []string, error) {
	logger = logging.NewComponentLogger(logger, "convention")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		table := &Table{}
		if err := Save(path, table); err != nil {
			logging.WarnWithContext(logger, "failed to write empty convention file",
				"convention_create_failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the convention directory is writable"),
			)
		} else {
			logger.Info("created empty convention file", logging.String(logging.FieldFile, path))
		}
		return table, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read convention: %w", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse convention %s: %w", filepath.Base(path), err)
	}

	table := &Table{}
	var warnings []string
	missingCols := map[string]struct{}{}
	for i, rec := range records {
		var e Entry
		for _, col := range Columns {
			raw, ok := rec[col]
			if !ok {
				missingCols[col] = struct{}{}
				continue
			}
			e.Set(col, stringify(raw))
		}
		if err := table.Add(e); err != nil {
			return nil, nil, fmt.Errorf("convention row %d: %w", i+1, err)
		}
	}
	if len(missingCols) > 0 {
		cols := make([]string, 0, len(missingCols))
		for col := range missingCols {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		msg := "convention missing columns " + strings.Join(cols, ", ") + "; filled with empty values"
		warnings = append(warnings, msg)
		logging.WarnWithContext(logger, "convention missing columns",
			"convention_missing_columns",
			logging.String(logging.FieldFile, path),
			logging.String("columns", strings.Join(cols, ",")),
			logging.String(logging.FieldErrorHint, "edit the convention to fill the empty columns"),
		)
	}
	logger.Debug("loaded convention", logging.String(logging.FieldFile, path), logging.Int("entries", table.Len()))
	return table, warnings, nil
}

func decodeRecords(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var keyed map[string]map[string]any
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(keyed))
		for name := range keyed {
			names = append(names, name)
		}
		sort.Strings(names)
		records := make([]map[string]any, 0, len(keyed))
		for _, name := range names {
			rec := keyed[name]
			if rec == nil {
				rec = map[string]any{}
			}
			rec[ColComponent] = name
			records = append(records, rec)
		}
		return records, nil
	}
	var records []map[string]any
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Save validates the table and writes it to path as an indented JSON array
// of records. The write holds an advisory lock beside the file and replaces
// the file atomically.
func Save(path string, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create convention directory: %w", err)
	}

	lock, err := fileutil.TryLock(path + ".lock")
	if err != nil {
		return fmt.Errorf("save convention: %w", err)
	}
	defer lock.Unlock()

	entries := t.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode convention: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write convention: %w", err)
	}
	return nil
}

package cutlist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"kerf/internal/fileutil"
	"kerf/internal/logging"
	"kerf/internal/textutil"
)

// Separator is the field delimiter for both input and output files.
const Separator = ';'

// File is a decoded cutlist.
type File struct {
	Path     string
	Encoding textutil.Encoding
	Rows     []Row
	// Warnings collects recoverable shape problems found while reading.
	Warnings []string
}

// ReadFile reads and decodes the cutlist at path.
func ReadFile(path string, logger *slog.Logger) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cutlist: %w", err)
	}
	f, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("parse cutlist %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes raw cutlist bytes. Short rows are padded with empty fields
// and extra fields dropped; both are reported as warnings. Blank lines are
// skipped.
func Parse(data []byte, logger *slog.Logger) (*File, error) {
	logger = logging.NewComponentLogger(logger, "cutlist")

	text, enc, err := textutil.Decode(data)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = Separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	f := &File{Encoding: enc}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		switch {
		case len(record) < len(SourceColumns):
			f.warn(logger, line, fmt.Sprintf("line %d: %d fields, padded to %d", line, len(record), len(SourceColumns)))
		case len(record) > len(SourceColumns):
			f.warn(logger, line, fmt.Sprintf("line %d: %d fields, extra fields dropped", line, len(record)))
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		f.Rows = append(f.Rows, NewRow(line, record))
	}
	logger.Debug("parsed cutlist",
		logging.Int("rows", len(f.Rows)),
		logging.String("encoding", enc.String()),
	)
	return f, nil
}

func (f *File) warn(logger *slog.Logger, line int, msg string) {
	f.Warnings = append(f.Warnings, msg)
	logging.WarnWithContext(logger, "cutlist row shape mismatch",
		"cutlist_row_shape",
		logging.Int(logging.FieldRow, line),
		logging.String("detail", msg),
		logging.String(logging.FieldErrorHint, "check the export settings of the design tool"),
	)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Write encodes rows with a header row, all source columns and the derived
// columns.
func Write(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	writer.Comma = Separator
	if err := writer.Write(Header()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes rows to path atomically as UTF-8.
func WriteFile(path string, rows []Row) error {
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return fmt.Errorf("encode cutlist: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write cutlist: %w", err)
	}
	return nil
}

package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"kerf/internal/convention"
	"kerf/internal/cutlist"
	"kerf/internal/logging"
	"kerf/internal/mpr"
	"kerf/internal/project"
	"kerf/internal/textutil"
)

var outputName = cutlist.OutputName

// FilePlan is the proposed rewrite of one MPR file.
type FilePlan struct {
	Name     string
	Path     string
	Encoding textutil.Encoding
	Result   mpr.Result
	Summary  mpr.Summary
	// Error is set when the file could not be read; the file is skipped.
	Error string

	original []byte
	encoded  []byte
}

// Changed reports whether applying the plan would rewrite the file.
func (f FilePlan) Changed() bool {
	return f.Error == "" && f.Result.Changed
}

// ConfirmationRow is one line of the confirmation summary.
type ConfirmationRow struct {
	File             string `json:"file"`
	LA100            string `json:"la_100"`
	BR100            string `json:"br_100"`
	ComponentRemoved string `json:"component_removed"`
	Macro124         string `json:"macro_124,omitempty"`
	Conversions      string `json:"conversions,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Plan is everything Apply needs, computed without touching the project.
type Plan struct {
	Options    Options
	ProjectDir string
	OutputPath string
	Cutlist    *cutlist.File
	Report     cutlist.Report
	Files      []FilePlan
	// Warnings collects non-fatal notes for the operator.
	Warnings []string
}

// Prepare loads and enriches the cutlist, locates every referenced MPR file,
// annotates rows from the original MPR text and computes the proposed
// rewrites. A missing MPR file aborts with a *project.MissingError.
func Prepare(ctx context.Context, table *convention.Table, opts Options, logger *slog.Logger) (*Plan, error) {
	logger = logging.NewComponentLogger(logger, "export")

	file, err := cutlist.ReadFile(opts.CutlistPath, logger)
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Options:    opts,
		ProjectDir: opts.projectDir(),
		OutputPath: opts.outputPath(),
		Cutlist:    file,
	}
	plan.Warnings = append(plan.Warnings, file.Warnings...)
	plan.Report = cutlist.Enrich(file.Rows, table, logger)
	if len(plan.Report.Unmatched) > 0 {
		plan.Warnings = append(plan.Warnings,
			"no convention entry for: "+strings.Join(plan.Report.Unmatched, ", "))
	}

	names := cutlist.ToolingFiles(file.Rows)
	found, err := project.Locate(ctx, plan.ProjectDir, names)
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]mpr.Summary, len(found))
	readErrors := map[string]string{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fp := planFile(name, found[name], opts)
		if fp.Error != "" {
			readErrors[name] = fp.Error
			logging.WarnWithContext(logger, "mpr file unreadable",
				"mpr_read_failed",
				logging.String(logging.FieldFile, fp.Path),
				logging.String("error", fp.Error),
				logging.String(logging.FieldErrorHint, "check file permissions"),
			)
		} else {
			summaries[name] = fp.Summary
			logger.Debug("planned mpr rewrite",
				logging.String(logging.FieldFile, fp.Path),
				logging.Bool("changed", fp.Result.Changed),
				logging.String("actions", strings.Join(fp.Result.Actions.Flags(), "; ")),
			)
		}
		plan.Files = append(plan.Files, fp)
	}

	for i := range file.Rows {
		row := &file.Rows[i]
		name := strings.TrimSpace(row.ToolingFile())
		if msg, bad := readErrors[name]; bad {
			row.Process = "ERROR: " + msg
			continue
		}
		if summary, ok := summaries[name]; ok {
			cutlist.Annotate(row, summary)
		}
	}

	logger.Info("export prepared",
		logging.String(logging.FieldFile, opts.CutlistPath),
		logging.Int("rows", len(file.Rows)),
		logging.Int("mpr_files", len(plan.Files)),
		logging.Int("changed", plan.ChangedFiles()),
		logging.Int("unmatched", len(plan.Report.Unmatched)),
	)
	return plan, nil
}

func planFile(name, path string, opts Options) FilePlan {
	fp := FilePlan{Name: name, Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		fp.Error = err.Error()
		return fp
	}
	text, enc, err := textutil.Decode(data)
	if err != nil {
		fp.Error = err.Error()
		return fp
	}
	fp.original = data
	fp.Encoding = enc
	fp.Summary = mpr.Analyze(text, opts.analyzeOptions())
	fp.Result = mpr.Rewrite(text, opts.rewriteOptions())
	if fp.Result.Changed {
		encoded, err := textutil.Encode(fp.Result.Text, enc)
		if err != nil {
			fp.Error = fmt.Sprintf("encode as %s: %v", enc, err)
			return fp
		}
		fp.encoded = encoded
	}
	return fp
}

// ChangedFiles counts files Apply would overwrite.
func (p *Plan) ChangedFiles() int {
	n := 0
	for _, f := range p.Files {
		if f.Changed() {
			n++
		}
	}
	return n
}

// Confirmation returns the summary shown before Apply, sorted by file name.
func (p *Plan) Confirmation() []ConfirmationRow {
	rows := make([]ConfirmationRow, 0, len(p.Files))
	for _, f := range p.Files {
		row := ConfirmationRow{File: f.Name, Error: f.Error}
		if f.Error == "" {
			a := f.Result.Actions
			row.LA100 = textutil.FormatFloat(f.Result.LA100)
			row.BR100 = textutil.FormatFloat(f.Result.BR100)
			if a.ComponentRemoved {
				row.ComponentRemoved = "yes"
			} else {
				row.ComponentRemoved = "no"
			}
			row.Macro124 = a.Macro124Status()
			row.Conversions = a.ConversionSummary()
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].File < rows[j].File })
	return rows
}

// Preview renders the enriched cutlist as it will be written.
func (p *Plan) Preview() ([]byte, error) {
	var buf bytes.Buffer
	if err := cutlist.Write(&buf, p.Cutlist.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Plan) startedAt() time.Time {
	if p.Options.Now != nil {
		return p.Options.Now()
	}
	return time.Now()
}

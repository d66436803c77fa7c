package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"kerf/internal/cutlist"
	"kerf/internal/export"
	"kerf/internal/history"
	"kerf/internal/preflight"
)

func newCutlistCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutlist",
		Short: "Preview and export cutlists",
	}
	cmd.AddCommand(newCutlistPreviewCommand(ctx))
	cmd.AddCommand(newCutlistExportCommand(ctx))
	return cmd
}

var previewColumns = []string{
	cutlist.ColReference,
	cutlist.ColMaterial,
	cutlist.ColGrainDirection,
	cutlist.ColEdgingDiagram,
	cutlist.ColEdgeBandCount,
	cutlist.ColFaceName,
	cutlist.ColToolingFile,
	cutlist.ColUniqueID,
}

func previewRecord(row cutlist.Row) []string {
	return []string{
		row.Reference(),
		row.Get(cutlist.ColMaterial),
		row.Get(cutlist.ColGrainDirection),
		row.Get(cutlist.ColEdgingDiagram),
		strconv.Itoa(row.EdgeBandCount),
		row.FaceName,
		row.ToolingFile(),
		row.UniqueID,
	}
}

func newCutlistPreviewCommand(ctx *commandContext) *cobra.Command {
	var withMPR bool
	var projectDir string
	var all bool

	cmd := &cobra.Command{
		Use:   "preview <cutlist.csv>",
		Short: "Show the enriched cutlist without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}

			var (
				rows     []cutlist.Row
				warnings []string
			)
			if withMPR {
				opts := export.OptionsFromConfig(cfg, args[0])
				opts.ProjectDir = projectDir
				plan, err := export.Prepare(cmd.Context(), table, opts, ctx.log())
				if err != nil {
					return err
				}
				rows, warnings = plan.Cutlist.Rows, plan.Warnings
			} else {
				file, err := cutlist.ReadFile(args[0], ctx.log())
				if err != nil {
					return err
				}
				report := cutlist.Enrich(file.Rows, table, ctx.log())
				rows, warnings = file.Rows, file.Warnings
				if len(report.Unmatched) > 0 {
					warnings = append(warnings, fmt.Sprintf("no convention entry for: %v", report.Unmatched))
				}
			}

			if ctx.jsonOutput() {
				records := make([]map[string]string, 0, len(rows))
				header := cutlist.Header()
				for _, row := range rows {
					rec := make(map[string]string, len(header))
					for i, v := range row.Record() {
						rec[header[i]] = v
					}
					records = append(records, rec)
				}
				return writeJSON(cmd, map[string]any{"rows": records, "warnings": warnings})
			}

			out := cmd.OutOrStdout()
			limit := cfg.Export.PreviewRows
			if all || limit > len(rows) {
				limit = len(rows)
			}
			headers := previewColumns
			if withMPR {
				headers = append(append([]string{}, previewColumns...), cutlist.ColProcessSummary)
			}
			records := make([][]string, 0, limit)
			for _, row := range rows[:limit] {
				rec := previewRecord(row)
				if withMPR {
					rec = append(rec, row.Process)
				}
				records = append(records, rec)
			}
			fmt.Fprintln(out, renderTable(headers, records, nil))
			if limit < len(rows) {
				fmt.Fprintf(out, "Showing %d of %d rows (use --all for every row)\n", limit, len(rows))
			}
			printWarnings(cmd.ErrOrStderr(), warnings)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMPR, "mpr", false, "Also locate and analyse the referenced MPR files")
	cmd.Flags().StringVar(&projectDir, "project", "", "Project folder holding the MPR files (default: cutlist folder)")
	cmd.Flags().BoolVar(&all, "all", false, "Show every row")
	return cmd
}

func newCutlistExportCommand(ctx *commandContext) *cobra.Command {
	var (
		projectDir   string
		outputPath   string
		toolDiameter float64
		keep124      bool
		assumeYes    bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "export <cutlist.csv>",
		Short: "Rewrite the referenced MPR files and write the final cutlist",
		Long: "Enrich the cutlist, locate every referenced MPR file and show the proposed\n" +
			"changes. After confirmation each changed file is backed up to <file>.bak\n" +
			"(an existing backup is kept) and overwritten, then the cutlist is written.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}

			opts := export.OptionsFromConfig(cfg, args[0])
			opts.ProjectDir = projectDir
			opts.OutputPath = outputPath
			if cmd.Flags().Changed("tool-diameter") {
				if toolDiameter < 0 {
					return fmt.Errorf("tool diameter must be non-negative")
				}
				opts.ToolDiameter = toolDiameter
			}
			if keep124 {
				opts.RemoveMacro124 = false
			}

			plan, err := export.Prepare(cmd.Context(), table, opts, ctx.log())
			if err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunProject(plan.ProjectDir)); len(failed) > 0 {
				return fmt.Errorf("project folder not ready: %s: %s", failed[0].Name, failed[0].Detail)
			}

			return ctx.withHistory(func(store *history.Store) error {
				warnings := append([]string{}, plan.Warnings...)
				if store != nil {
					if w := previouslyExportedWarning(cmd.Context(), store, plan); w != "" {
						warnings = append(warnings, w)
					}
				}

				if !ctx.jsonOutput() {
					renderConfirmation(cmd.OutOrStdout(), plan)
					printWarnings(cmd.ErrOrStderr(), warnings)
				}
				if dryRun {
					if ctx.jsonOutput() {
						return writeJSON(cmd, exportJSON(plan, nil, warnings))
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Dry run: nothing written")
					return nil
				}

				question := fmt.Sprintf("Back up and rewrite %d MPR file(s) and write %s?",
					plan.ChangedFiles(), filepath.Base(plan.OutputPath))
				ok, err := confirm(cmd, question, assumeYes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Export cancelled; nothing written")
					return nil
				}

				var recorder export.Recorder
				if store != nil {
					recorder = store
				}
				outcome, err := export.Apply(cmd.Context(), plan, true, recorder, ctx.log())
				if outcome != nil && !ctx.jsonOutput() {
					renderOutcome(cmd.OutOrStdout(), outcome)
				}
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, exportJSON(plan, outcome, warnings))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows)\n", outcome.OutputPath, len(plan.Cutlist.Rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectDir, "project", "", "Project folder holding the MPR files (default: cutlist folder)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output cutlist path (default: <prefix>_<yymmdd>_<HHMM>_<name> beside the cutlist)")
	cmd.Flags().Float64Var(&toolDiameter, "tool-diameter", 0, "Tool diameter added to 109→151 pocket lengths (default from config)")
	cmd.Flags().BoolVar(&keep124, "keep-124", false, "Keep macro 124 blocks")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Apply without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the proposed changes and stop")
	return cmd
}

func renderConfirmation(w io.Writer, plan *export.Plan) {
	rows := plan.Confirmation()
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.File, r.LA100, r.BR100, r.ComponentRemoved, r.Macro124, r.Conversions, r.Error})
	}
	headers := []string{"File", "LA_100", "BR_100", "Component removed", "124", "109→151", "Error"}
	fmt.Fprintln(w, renderTable(headers, records, []columnAlignment{alignLeft, alignRight, alignRight}))
	fmt.Fprintf(w, "%d of %d MPR file(s) will change; output: %s\n", plan.ChangedFiles(), len(rows), plan.OutputPath)
}

func renderOutcome(w io.Writer, outcome *export.Outcome) {
	colorize := shouldColorize(w)
	for _, f := range outcome.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintln(w, renderStatusLine(f.Name, statusError, f.Err.Error(), colorize))
		case f.RotatedPath != "":
			msg := fmt.Sprintf("rewritten, backup %s, earlier backup kept as %s", filepath.Base(f.BackupPath), filepath.Base(f.RotatedPath))
			fmt.Fprintln(w, renderStatusLine(f.Name, statusOK, msg, colorize))
		default:
			fmt.Fprintln(w, renderStatusLine(f.Name, statusOK, "rewritten, backup "+filepath.Base(f.BackupPath), colorize))
		}
	}
}

func previouslyExportedWarning(ctx context.Context, store *history.Store, plan *export.Plan) string {
	ids := make([]string, 0, len(plan.Cutlist.Rows))
	for _, row := range plan.Cutlist.Rows {
		ids = append(ids, row.UniqueID)
	}
	seen, err := store.PreviouslyExported(ctx, ids)
	if err != nil || len(seen) == 0 {
		return ""
	}
	var last int64
	for _, id := range seen {
		last = max(last, id)
	}
	return fmt.Sprintf("%d row(s) were already exported (latest run #%d)", len(seen), last)
}

type exportFileJSON struct {
	export.ConfirmationRow
	Written bool   `json:"written"`
	Backup  string `json:"backup,omitempty"`
}

func exportJSON(plan *export.Plan, outcome *export.Outcome, warnings []string) map[string]any {
	written := map[string]export.FileOutcome{}
	if outcome != nil {
		for _, f := range outcome.Files {
			written[f.Name] = f
		}
	}
	files := make([]exportFileJSON, 0, len(plan.Files))
	for _, row := range plan.Confirmation() {
		f := exportFileJSON{ConfirmationRow: row}
		if fo, ok := written[row.File]; ok {
			f.Written = fo.Written
			f.Backup = fo.BackupPath
			if fo.Err != nil {
				f.Error = fo.Err.Error()
			}
		}
		files = append(files, f)
	}
	result := map[string]any{
		"cutlist":   plan.Options.CutlistPath,
		"output":    plan.OutputPath,
		"rows":      len(plan.Cutlist.Rows),
		"unmatched": plan.Report.Unmatched,
		"files":     files,
		"warnings":  warnings,
		"applied":   outcome != nil,
	}
	if outcome != nil && outcome.RunID != 0 {
		result["run_id"] = outcome.RunID
	}
	return result
}

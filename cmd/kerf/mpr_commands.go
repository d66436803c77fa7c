package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kerf/internal/config"
	"kerf/internal/export"
	"kerf/internal/fileutil"
	"kerf/internal/logging"
	"kerf/internal/mpr"
	"kerf/internal/textutil"
)

func newMPRCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mpr",
		Short: "Inspect and rewrite MPR machine programs",
	}
	cmd.AddCommand(newMPRInspectCommand(ctx))
	cmd.AddCommand(newMPRRewriteCommand(ctx))
	cmd.AddCommand(newMPRCleanCommand(ctx))
	cmd.AddCommand(newMPRReferenceCommand(ctx))
	cmd.AddCommand(newMPRRestoreCommand(ctx))
	return cmd
}

func readMPR(path string) (string, textutil.Encoding, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, nil, fmt.Errorf("read mpr: %w", err)
	}
	text, enc, err := textutil.Decode(data)
	if err != nil {
		return "", 0, nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return text, enc, data, nil
}

func mprAnalyzeOptions(cfg *config.Config) mpr.AnalyzeOptions {
	return mpr.AnalyzeOptions{
		SkipDisabled: cfg.MPR.SkipDisabled,
		BelowTool:    cfg.BelowToolPattern(),
	}
}

func mprRewriteOptions(cfg *config.Config) mpr.Options {
	return mpr.Options{
		ToolDiameter:   cfg.Export.ToolDiameter,
		RemoveMacro124: cfg.Export.RemoveMacro124,
		BelowTool:      cfg.BelowToolPattern(),
		ComponentTag:   cfg.MPR.ComponentTag,
	}
}

func newMPRInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.mpr>",
		Short: "Summarise the macros, drills and grooves in an MPR file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			text, enc, _, err := readMPR(args[0])
			if err != nil {
				return err
			}
			summary := mpr.Analyze(text, mprAnalyzeOptions(cfg))

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"file":                args[0],
					"encoding":            enc.String(),
					"la_100":              summary.LA100,
					"br_100":              summary.BR100,
					"process_summary":     summary.ProcessSummary(),
					"vertical_drill":      summary.VerticalDetail(),
					"horizontal_drill":    summary.HorizontalDetail(),
					"angle_groove_length": summary.AngleGrooveLength(),
					"saw_groove_length":   summary.SawGrooveLength(),
					"component_block":     mpr.HasComponentBlock(text, cfg.MPR.ComponentTag),
				})
			}

			out := cmd.OutOrStdout()
			ids := make([]int, 0, len(summary.CountsByID))
			for id := range summary.CountsByID {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				desc, _ := mpr.Describe(id)
				rows = append(rows, []string{strconv.Itoa(id), desc, strconv.Itoa(summary.CountsByID[id])})
			}
			fmt.Fprintln(out, renderTable([]string{"Macro", "Process", "Count"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))

			details := [][]string{
				{"File", filepath.Base(args[0])},
				{"Encoding", enc.String()},
				{"LA_100", textutil.FormatFloat(summary.LA100)},
				{"BR_100", textutil.FormatFloat(summary.BR100)},
				{"Component block", yesNo(mpr.HasComponentBlock(text, cfg.MPR.ComponentTag))},
				{"Vertical drills", summary.VerticalDetail()},
				{"Horizontal drills", summary.HorizontalDetail()},
				{"Angle grooves", summary.AngleGrooveLength()},
				{"Saw grooves", summary.SawGrooveLength()},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, details, nil))
			return nil
		},
	}
}

func newMPRRewriteCommand(ctx *commandContext) *cobra.Command {
	var (
		apply        bool
		assumeYes    bool
		toolDiameter float64
		keep124      bool
	)
	cmd := &cobra.Command{
		Use:   "rewrite <file.mpr>",
		Short: "Show or apply the MPR rewrite rules for a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := args[0]
			text, enc, original, err := readMPR(path)
			if err != nil {
				return err
			}
			opts := mprRewriteOptions(cfg)
			if cmd.Flags().Changed("tool-diameter") {
				if toolDiameter < 0 {
					return fmt.Errorf("tool diameter must be non-negative")
				}
				opts.ToolDiameter = toolDiameter
			}
			if keep124 {
				opts.RemoveMacro124 = false
			}
			result := mpr.Rewrite(text, opts)
			flags := result.Actions.Flags()

			if !ctx.jsonOutput() {
				out := cmd.OutOrStdout()
				if !result.Changed {
					fmt.Fprintf(out, "%s: no changes\n", filepath.Base(path))
				} else {
					fmt.Fprintf(out, "%s:\n", filepath.Base(path))
					for _, f := range flags {
						fmt.Fprintf(out, "  - %s\n", f)
					}
				}
				for _, s := range result.Actions.Skipped {
					fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine("Skipped", statusWarn, s, shouldColorize(cmd.ErrOrStderr())))
				}
			}

			var written export.FileOutcome
			if apply && result.Changed {
				ok, err := confirm(cmd, fmt.Sprintf("Back up and rewrite %s?", filepath.Base(path)), assumeYes)
				if err != nil {
					return err
				}
				if ok {
					written, err = writeRewrite(ctx, path, original, result.Text, enc)
					if err != nil {
						return err
					}
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"file":    path,
					"changed": result.Changed,
					"actions": flags,
					"skipped": result.Actions.Skipped,
					"written": written.Written,
					"backup":  written.BackupPath,
					"rotated": written.RotatedPath,
				})
			}
			if written.Written {
				fmt.Fprintf(cmd.OutOrStdout(), "Rewritten; backup at %s\n", written.BackupPath)
				if written.RotatedPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Earlier backup kept at %s\n", written.RotatedPath)
				}
			} else if result.Changed && !apply {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run: use --apply to write")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Back up and write the rewritten program")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Apply without asking")
	cmd.Flags().Float64Var(&toolDiameter, "tool-diameter", 0, "Tool diameter added to 109→151 pocket lengths (default from config)")
	cmd.Flags().BoolVar(&keep124, "keep-124", false, "Keep macro 124 blocks")
	return cmd
}

func writeRewrite(ctx *commandContext, path string, original []byte, text string, enc textutil.Encoding) (export.FileOutcome, error) {
	encoded, err := textutil.Encode(text, enc)
	if err != nil {
		return export.FileOutcome{}, err
	}
	lock, err := fileutil.TryLock(filepath.Join(filepath.Dir(path), export.LockFileName))
	if err != nil {
		return export.FileOutcome{}, fmt.Errorf("lock project folder: %w", err)
	}
	defer lock.Unlock()

	fo := export.ReplaceFile(path, original, encoded)
	if fo.Err != nil {
		return fo, fo.Err
	}
	ctx.log().Info("mpr rewritten",
		logging.String(logging.FieldFile, path),
		logging.String("backup", fo.BackupPath),
		logging.String("rotated", fo.RotatedPath),
	)
	return fo, nil
}

func newMPRCleanCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "clean <folder>",
		Short: "Remove component blocks from every MPR file under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := args[0]
			targets, err := export.FindComponentBlocks(cmd.Context(), root, cfg.MPR.ComponentTag, ctx.log())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(targets) == 0 {
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"root": root, "files": []string{}})
				}
				fmt.Fprintln(out, "No MPR files contain the component block")
				return nil
			}

			if !ctx.jsonOutput() {
				rows := make([][]string, 0, len(targets))
				for _, t := range targets {
					rel, err := filepath.Rel(root, t.Path)
					if err != nil {
						rel = t.Path
					}
					rows = append(rows, []string{rel, strconv.Itoa(t.Blocks)})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Blocks"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			ok, err := confirm(cmd, fmt.Sprintf("Back up and clean %d file(s)?", len(targets)), assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Clean cancelled; nothing written")
				return nil
			}
			outcomes, err := export.CleanComponentBlocks(cmd.Context(), root, targets, true, ctx.log())
			if err != nil {
				return err
			}
			return reportFileOutcomes(cmd, ctx, outcomes, "cleaned")
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Clean without asking")
	return cmd
}

func newMPRRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file.mpr>...",
		Short: "Copy each file's .bak backup back over it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcomes := export.Restore(args, ctx.log())
			return reportFileOutcomes(cmd, ctx, outcomes, "restored")
		},
	}
}

type fileOutcomeJSON struct {
	File   string `json:"file"`
	Backup string `json:"backup,omitempty"`
	Error  string `json:"error,omitempty"`
}

func reportFileOutcomes(cmd *cobra.Command, ctx *commandContext, outcomes []export.FileOutcome, verb string) error {
	var failed int
	items := make([]fileOutcomeJSON, 0, len(outcomes))
	colorize := shouldColorize(cmd.OutOrStdout())
	for _, fo := range outcomes {
		item := fileOutcomeJSON{File: fo.Path, Backup: fo.BackupPath}
		if fo.Err != nil {
			failed++
			item.Error = fo.Err.Error()
		}
		items = append(items, item)
		if ctx.jsonOutput() {
			continue
		}
		if fo.Err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine(fo.Name, statusError, fo.Err.Error(), colorize))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine(fo.Name, statusOK, verb, colorize))
		}
	}
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, map[string]any{"files": items}); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) not %s", failed, len(outcomes), verb)
	}
	return nil
}

func newMPRReferenceCommand(ctx *commandContext) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "reference [macro-number]",
		Short: "Show the MPR command, edge and geometry reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := mpr.LoadReference()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				number, err := strconv.Atoi(strings.Trim(args[0], "<> "))
				if err != nil {
					return fmt.Errorf("invalid macro number %q", args[0])
				}
				command, ok := ref.Lookup(number)
				if !ok {
					return fmt.Errorf("macro %d is not in the reference", number)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, command)
				}
				fmt.Fprintln(out, command.FullName())
				if command.Description != "" {
					fmt.Fprintln(out, command.Description)
				}
				if len(command.Parameters) > 0 {
					fmt.Fprintf(out, "Parameters: %s\n", strings.Join(command.Parameters, ", "))
				}
				return nil
			}

			commands := ref.Search(search)
			if ctx.jsonOutput() {
				if search != "" {
					return writeJSON(cmd, commands)
				}
				return writeJSON(cmd, ref)
			}
			rows := make([][]string, 0, len(commands))
			for _, c := range commands {
				rows = append(rows, []string{strconv.Itoa(c.Number), c.Name, c.Description})
			}
			fmt.Fprintln(out, renderTable([]string{"Macro", "Name", "Description"}, rows, []columnAlignment{alignRight}))
			if search != "" {
				return nil
			}
			codes := func(title string, list []mpr.Code) {
				rows := make([][]string, 0, len(list))
				for _, c := range list {
					rows = append(rows, []string{c.Code, c.Description})
				}
				fmt.Fprintln(out, renderTable([]string{title, "Description"}, rows, nil))
			}
			codes("Edge", ref.Edges)
			codes("Geometry", ref.Geometry)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter commands by number, name or description")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kerf/internal/history"
	"kerf/internal/textutil"
)

var errHistoryDisabled = errors.New("history is disabled in the configuration")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past exports recorded in the ledger",
	}
	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No exports recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					rows = append(rows, []string{
						strconv.FormatInt(r.ID, 10),
						humanize.Time(r.StartedAt),
						filepath.Base(r.CutlistPath),
						strconv.Itoa(r.RowCount),
						strconv.Itoa(r.UnmatchedCount),
						strconv.Itoa(r.FilesChanged),
					})
				}
				headers := []string{"Run", "Started", "Cutlist", "Rows", "Unmatched", "MPR changed"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one export with its MPR changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				run, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %d not found", id)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, run)
				}

				out := cmd.OutOrStdout()
				details := [][]string{
					{"Run", strconv.FormatInt(run.ID, 10)},
					{"Started", run.StartedAt.Local().Format(time.DateTime)},
					{"Cutlist", run.CutlistPath},
					{"Output", run.OutputPath},
					{"Project", run.ProjectDir},
					{"Rows", strconv.Itoa(run.RowCount)},
					{"Unmatched", strconv.Itoa(run.UnmatchedCount)},
					{"Tool diameter", textutil.FormatFloat(run.ToolDiameter)},
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, details, []columnAlignment{alignLeft, alignLeftFull}))

				if len(run.Files) > 0 {
					rows := make([][]string, 0, len(run.Files))
					for _, f := range run.Files {
						rows = append(rows, []string{
							filepath.Base(f.Path),
							yesNo(f.Changed),
							yesNo(f.ComponentRemoved),
							strconv.Itoa(f.Macro124Removed),
							strconv.Itoa(f.Conversions),
							textutil.FormatFloat(f.LA100),
							textutil.FormatFloat(f.BR100),
							f.Error,
						})
					}
					headers := []string{"File", "Changed", "Component removed", "124 removed", "109→151", "LA_100", "BR_100", "Error"}
					fmt.Fprintln(out, renderTable(headers, rows, nil))
				}
				return nil
			})
		},
	}
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kerf/internal/convention"
)

func newConventionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "convention",
		Aliases: []string{"conv"},
		Short:   "View and edit the convention table",
	}
	cmd.AddCommand(newConventionListCommand(ctx))
	cmd.AddCommand(newConventionShowCommand(ctx))
	cmd.AddCommand(newConventionSetCommand(ctx))
	cmd.AddCommand(newConventionDeleteCommand(ctx))
	cmd.AddCommand(newConventionImportCommand(ctx))
	cmd.AddCommand(newConventionExportCommand(ctx))
	cmd.AddCommand(newConventionPathCommand(ctx))
	cmd.AddCommand(newConventionImagesCommand(ctx))
	return cmd
}

func newConventionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every convention entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}
			entries := table.Entries()
			if ctx.jsonOutput() {
				if entries == nil {
					entries = []convention.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Convention table is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, e.Values())
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(convention.Columns, rows, nil))
			return nil
		},
	}
}

func newConventionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:               "show <component>",
		Short:             "Show one convention entry",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeComponents(ctx),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}
			entry, ok := table.Find(args[0])
			if !ok {
				return fmt.Errorf("%q: %w", args[0], convention.ErrNotFound)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, entry)
			}
			rows := make([][]string, 0, len(convention.Columns))
			for _, col := range convention.Columns {
				v, _ := entry.Get(col)
				rows = append(rows, []string{col, v})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Column", "Value"}, rows, nil))
			return nil
		},
	}
}

// conventionFlags maps each non-key column to a kebab-case flag.
var conventionFlags = map[string]string{
	convention.ColFace1:          "face-1",
	convention.ColFace2:          "face-2",
	convention.ColEdge0:          "edge-0",
	convention.ColEdge1:          "edge-1",
	convention.ColEdge2NoConnect: "edge-2-no-connect",
	convention.ColEdge2Connect:   "edge-2-connect",
	convention.ColEdge3:          "edge-3",
	convention.ColEdge4:          "edge-4",
}

func newConventionSetCommand(ctx *commandContext) *cobra.Command {
	values := make(map[string]*string, len(conventionFlags))
	var rename string

	cmd := &cobra.Command{
		Use:               "set <component>",
		Short:             "Add a convention entry or update the columns given as flags",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeComponents(ctx),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			entry, exists := table.Find(name)
			if !exists {
				entry = convention.Entry{Component: name}
			}
			for _, col := range convention.Columns[1:] {
				flag := conventionFlags[col]
				if cmd.Flags().Changed(flag) {
					entry.Set(col, *values[col])
				}
			}
			if cmd.Flags().Changed("rename") {
				if !exists {
					return fmt.Errorf("%q: %w", name, convention.ErrNotFound)
				}
				entry.Component = rename
			}

			if exists {
				err = table.Update(name, entry)
			} else {
				err = table.Add(entry)
			}
			if err != nil {
				return err
			}
			if err := ctx.saveConvention(table); err != nil {
				return err
			}
			verb := "Added"
			if exists {
				verb = "Updated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, strings.TrimSpace(entry.Component))
			return nil
		},
	}
	for _, col := range convention.Columns[1:] {
		flag := conventionFlags[col]
		values[col] = cmd.Flags().String(flag, "", col+" value")
	}
	cmd.Flags().StringVar(&rename, "rename", "", "New Component name for an existing entry")
	return cmd
}

func newConventionDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <component>",
		Aliases:           []string{"rm"},
		Short:             "Delete a convention entry",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeComponents(ctx),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}
			if err := table.Delete(args[0]); err != nil {
				return err
			}
			if err := ctx.saveConvention(table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newConventionImportCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Replace the convention table with a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imported, err := convention.ImportXLSX(args[0])
			if err != nil {
				return err
			}
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}
			question := fmt.Sprintf("Replace %d entries with %d from %s?", table.Len(), imported.Len(), filepath.Base(args[0]))
			ok, err := confirm(cmd, question, assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
				return nil
			}
			table.Replace(imported)
			if err := ctx.saveConvention(table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s\n", table.Len(), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Replace without asking")
	return cmd
}

func newConventionExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the convention table to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ctx.loadConvention(cmd)
			if err != nil {
				return err
			}
			if err := convention.ExportXLSX(args[0], table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", table.Len(), args[0])
			return nil
		},
	}
}

func newConventionPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the convention file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.ConventionJSON)
			return nil
		},
	}
}

func newConventionImagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List the edge diagram reference images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			images, err := convention.ListImages(cfg.Paths.EdgeDir)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if images == nil {
					images = []string{}
				}
				return writeJSON(cmd, images)
			}
			if len(images) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No images in %s\n", cfg.Paths.EdgeDir)
				return nil
			}
			for _, img := range images {
				fmt.Fprintln(cmd.OutOrStdout(), img)
			}
			return nil
		},
	}
}

// completeComponents offers the Component names of the convention table for
// the first positional argument.
func completeComponents(ctx *commandContext) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		table, _, err := convention.Load(cfg.Paths.ConventionJSON, ctx.log())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		for _, name := range table.Components() {
			if strings.HasPrefix(name, toComplete) {
				out = append(out, name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

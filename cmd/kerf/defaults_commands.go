package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kerf/internal/config"
	"kerf/internal/prefs"
)

func newDefaultsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show or save session defaults (convention file, edge diagram folder)",
	}
	cmd.AddCommand(newDefaultsShowCommand(ctx))
	cmd.AddCommand(newDefaultsSaveCommand(ctx))
	return cmd
}

func newDefaultsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective convention file and edge diagram folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			saved, err := prefs.Load(cfg.Paths.PrefsPath)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"convention_json": cfg.Paths.ConventionJSON,
					"edge_dir":        cfg.Paths.EdgeDir,
					"prefs_path":      cfg.Paths.PrefsPath,
					"saved":           saved,
				})
			}
			rows := [][]string{
				{"Convention file", cfg.Paths.ConventionJSON, yesNo(saved.ConventionJSON != "")},
				{"Edge diagrams", cfg.Paths.EdgeDir, yesNo(saved.EdgeDir != "")},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value", "Saved"}, rows, []columnAlignment{alignLeft, alignLeftFull, alignLeft}))
			fmt.Fprintf(cmd.OutOrStdout(), "Preferences file: %s\n", cfg.Paths.PrefsPath)
			return nil
		},
	}
}

func newDefaultsSaveCommand(ctx *commandContext) *cobra.Command {
	var conventionPath string
	var edgeDir string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the convention file and edge diagram folder as defaults",
		Long: "Save the current convention file and edge diagram folder as defaults.\n" +
			"Flags replace the saved value; omitted flags save the effective value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := prefs.Prefs{
				ConventionJSON: cfg.Paths.ConventionJSON,
				EdgeDir:        cfg.Paths.EdgeDir,
			}
			if v := strings.TrimSpace(conventionPath); v != "" {
				expanded, err := config.ExpandPath(v)
				if err != nil {
					return err
				}
				p.ConventionJSON = expanded
			}
			if v := strings.TrimSpace(edgeDir); v != "" {
				expanded, err := config.ExpandPath(v)
				if err != nil {
					return err
				}
				p.EdgeDir = expanded
			}
			if err := prefs.Save(cfg.Paths.PrefsPath, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved defaults to %s\n", cfg.Paths.PrefsPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&conventionPath, "convention", "", "Convention JSON file")
	cmd.Flags().StringVar(&edgeDir, "edge-dir", "", "Edge diagram image folder")
	return cmd
}

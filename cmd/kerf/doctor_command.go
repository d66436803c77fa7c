package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kerf/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var projectDir string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, directories and the history ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, projectDir)
			failed := preflight.Failed(results)

			if ctx.jsonOutput() {
				type check struct {
					Name   string `json:"name"`
					Passed bool   `json:"passed"`
					Detail string `json:"detail,omitempty"`
				}
				checks := make([]check, 0, len(results))
				for _, r := range results {
					checks = append(checks, check{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
				}
				if err := writeJSON(cmd, map[string]any{
					"config": ctx.configPath,
					"checks": checks,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("kerf doctor", colorize) {
					fmt.Fprintln(out, line)
				}
				configDetail := ctx.configPath
				if !ctx.configSeen {
					configDetail += " (not found, using defaults)"
				}
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configDetail, colorize))
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&projectDir, "project", "", "Also check a project folder")
	return cmd
}

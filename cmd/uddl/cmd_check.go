package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/uddl/internal/cli"
	"github.com/hlop3z/uddl/pkg/uddl"
)

// checkCmd validates a schema file.
func checkCmd(flags *globalFlags) *cobra.Command {
	var (
		jsonOutput bool
		autofix    bool
	)

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check a schema file for consistency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("autofix") {
				cfg.Autofix = autofix
			}
			if jsonOutput {
				cli.SetDefault(cli.NewConfigWithMode(cli.ModeJSON))
			}

			file := args[0]
			stdout := cmd.OutOrStdout()

			var opts []uddl.Option
			if cfg.Autofix {
				opts = append(opts, uddl.WithAutofix())
			}
			schema, err := uddl.ParseFile(file, opts...)
			if err != nil {
				if !jsonOutput {
					return err
				}
				outputJSON(stdout, cli.CheckResult{
					File:        file,
					Diagnostics: []cli.Diagnostic{cli.NewDiagnostic(err)},
				})
				return &exitError{code: 1}
			}

			report := uddl.CheckConsistency(schema)
			if jsonOutput {
				outputJSON(stdout, cli.NewCheckResult(file, report))
			} else if report.Valid {
				fmt.Fprint(stdout, cli.FormatReport(file, report))
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatReport(file, report))
			}
			if !report.Valid {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&autofix, "autofix", false, "Apply the foreign key autofix before checking")

	return cmd
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

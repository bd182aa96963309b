package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/cli"
	"github.com/hlop3z/uddl/pkg/uddl"
)

// importCmd converts PostgreSQL DDL into universal DDL.
func importCmd() *cobra.Command {
	var (
		outputFile string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.sql>",
		Short: "Convert PostgreSQL DDL into universal DDL",
		Long: `Convert the create table, alter table and create index statements of
a PostgreSQL DDL file. Other statements are skipped with a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return alerr.Wrap(alerr.ErrFileRead, err, "cannot read SQL file").With("file", args[0])
			}
			schema, err := uddl.ImportPostgres(string(data))
			if err != nil {
				return withFile(err, args[0])
			}
			if report := uddl.CheckConsistency(schema); !report.Valid {
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatWarning("the imported schema is inconsistent"))
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatReport(args[0], report))
			}

			out, err := uddl.Generate(schema, "universal")
			if err != nil {
				return err
			}

			if outputFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			if _, err := os.Stat(outputFile); err == nil && !force {
				return alerr.New(alerr.ErrFileExists, "output file already exists").
					With("file", outputFile).
					WithHelp("use --force to overwrite it")
			}
			if err := os.WriteFile(outputFile, []byte(out+"\n"), 0o644); err != nil {
				return alerr.Wrap(alerr.ErrFileWrite, err, "cannot write output file").With("file", outputFile)
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.FormatSuccess("wrote "+outputFile))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing output file")

	return cmd
}

// withFile adds the file name to a coded error that has none.
func withFile(err error, file string) error {
	if ae, ok := err.(*alerr.Error); ok {
		if f, _, _, _ := ae.Location(); f == "" {
			return ae.With("file", file)
		}
	}
	return err
}

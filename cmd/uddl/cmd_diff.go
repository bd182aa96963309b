package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/uddl/internal/cli"
	"github.com/hlop3z/uddl/internal/drift"
	"github.com/hlop3z/uddl/pkg/uddl"
)

// diffCmd compares two versions of a schema.
func diffCmd() *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show the table changes between two schema files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldSchema, err := uddl.ParseFile(args[0], uddl.WithConsistencyCheck())
			if err != nil {
				return err
			}
			newSchema, err := uddl.ParseFile(args[1], uddl.WithConsistencyCheck())
			if err != nil {
				return err
			}

			c, err := uddl.Compare(oldSchema, newSchema)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.ColorDiff(drift.FormatComparison(c)))

			if exitCode && !c.Match {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 1 when the schemas differ")

	return cmd
}

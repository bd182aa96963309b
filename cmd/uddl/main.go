// Package main provides the uddl CLI.
//
// Usage:
//
//	uddl generate schema.uddl -d postgresql,sqlite -o build   # Render DDL files
//	uddl generate schema.uddl --watch                         # Re-render on change
//	uddl check schema.uddl                                    # Consistency report
//	uddl import dump.sql                                      # PostgreSQL DDL -> universal DDL
//	uddl diff old.uddl new.uddl                               # Compare two schema versions
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/uddl/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	verbose    bool
}

// exitError ends the process with a status code. Its message, if any, was
// already printed by the command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "uddl",
		Short: "Universal DDL toolkit",
		Long: `uddl translates a schema written in a dialect-neutral DDL into
PostgreSQL, SQLite or MariaDB DDL, after checking it for relational
consistency.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(stderr, flags.verbose)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", defaultConfigFile, "Path to config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		generateCmd(flags),
		checkCmd(flags),
		importCmd(),
		diffCmd(),
	)
	return root
}

// setupLogging installs a text handler on stderr, at debug level when
// verbose.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprint(stderr, cli.FormatError(err))
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

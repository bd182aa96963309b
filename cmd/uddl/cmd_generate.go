package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/cli"
	"github.com/hlop3z/uddl/internal/dialect"
	"github.com/hlop3z/uddl/internal/drift"
	"github.com/hlop3z/uddl/pkg/uddl"
)

// generateCmd renders schema files into one DDL file per dialect.
func generateCmd(flags *globalFlags) *cobra.Command {
	var (
		dialects  []string
		outputDir string
		drop      bool
		force     bool
		autofix   bool
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "generate <file>...",
		Short: "Render schema files for the configured dialects",
		Long: `Render each schema file as <output-dir>/<name>.<dialect>.sql.

Nothing is written when a file has a syntax error or fails the
consistency check. Existing files are kept unless --force is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("dialect") {
				cfg.Dialects = dialects
			}
			if f.Changed("output") {
				cfg.OutputDir = outputDir
			}
			if f.Changed("drop") {
				cfg.GenerateDrop = drop
			}
			if f.Changed("autofix") {
				cfg.Autofix = autofix
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			g := &generator{cfg: cfg, force: force, out: cmd.OutOrStdout()}
			if !watch {
				_, err := g.run(cmd.Context(), args)
				return err
			}
			return g.watch(cmd.Context(), args, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringSliceVarP(&dialects, "dialect", "d", nil, "Target dialects (comma-separated)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
	cmd.Flags().BoolVar(&drop, "drop", false, "Prefix the output with drop statements")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&autofix, "autofix", false, "Defer forward-referencing foreign keys")
	cmd.Flags().BoolVar(&watch, "watch", false, "Regenerate when a schema file changes")

	return cmd
}

// generator renders schema files. It keeps the last parsed version of
// each file so that watch mode can report what changed.
type generator struct {
	cfg   *Config
	force bool
	out   io.Writer
	last  map[string]*uddl.Ast
}

// output is one rendered file, not yet written.
type output struct {
	dialect string
	path    string
	sql     string
}

// run parses and renders every file, then writes all outputs. Any
// failure before writing leaves the output directory untouched.
func (g *generator) run(ctx context.Context, files []string) ([]output, error) {
	schemas := make(map[string]*uddl.Ast, len(files))
	var outputs []output
	for _, file := range files {
		schema, err := g.parse(file)
		if err != nil {
			return nil, err
		}
		schemas[file] = schema

		rendered, err := uddl.GenerateAll(ctx, schema, g.cfg.Dialects, g.options()...)
		if err != nil {
			return nil, err
		}
		for _, name := range g.cfg.Dialects {
			outputs = append(outputs, output{
				dialect: name,
				path:    outputPath(g.cfg.OutputDir, file, name),
				sql:     rendered[name],
			})
		}
	}

	if !g.force {
		for _, o := range outputs {
			if _, err := os.Stat(o.path); err == nil {
				return nil, alerr.New(alerr.ErrFileExists, "output file already exists").
					With("file", o.path).
					WithHelp("use --force to overwrite it")
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, alerr.Wrap(alerr.ErrFileWrite, err, "cannot access output file").With("file", o.path)
			}
		}
	}

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, alerr.Wrap(alerr.ErrFileWrite, err, "cannot create output directory").With("file", g.cfg.OutputDir)
	}
	table := cli.NewTable("DIALECT", "FILE")
	for _, o := range outputs {
		if err := os.WriteFile(o.path, []byte(o.sql+"\n"), 0o644); err != nil {
			return nil, alerr.Wrap(alerr.ErrFileWrite, err, "cannot write output file").With("file", o.path)
		}
		table.AddRow(o.dialect, o.path)
	}
	fmt.Fprint(g.out, table.String())

	g.report(schemas)
	return outputs, nil
}

func (g *generator) parse(file string) (*uddl.Ast, error) {
	var opts []uddl.Option
	if g.cfg.Autofix {
		opts = append(opts, uddl.WithAutofix())
	}
	if g.cfg.CheckConsistency {
		opts = append(opts, uddl.WithConsistencyCheck())
	}
	schema, err := uddl.ParseFile(file, opts...)
	var verr *uddl.ValidationError
	if errors.As(err, &verr) {
		return nil, alerr.New(alerr.ErrConsistency, verr.Error()).
			With("file", file).
			With("errors", len(verr.Errors))
	}
	return schema, err
}

func (g *generator) options() []uddl.GenerateOption {
	opts := []uddl.GenerateOption{uddl.WithIndent(g.cfg.Indent)}
	if g.cfg.GenerateDrop {
		opts = append(opts, uddl.WithDrop())
	}
	return opts
}

// report logs the table changes of every file since the previous run.
func (g *generator) report(schemas map[string]*uddl.Ast) {
	if g.last == nil {
		g.last = schemas
		return
	}
	for file, schema := range schemas {
		prev, ok := g.last[file]
		if !ok {
			continue
		}
		c, err := uddl.Compare(prev, schema)
		if err != nil {
			slog.Debug("cannot compare schema versions", "file", file, "error", err)
			continue
		}
		slog.Info("schema changed", "file", file, "tables", drift.FormatSummary(drift.Summarize(c)))
	}
	g.last = schemas
}

// outputPath returns <dir>/<name>.<dialect>.sql, or .uddl for the
// universal dialect.
func outputPath(dir, file, name string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	ext := ".sql"
	if d, err := dialect.Get(name); err == nil {
		name = d.Name
		if name == dialect.Universal {
			ext = ".uddl"
		}
	}
	return filepath.Join(dir, base+"."+name+ext)
}

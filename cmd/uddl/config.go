package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/dialect"
)

const defaultConfigFile = "uddl.yaml"

// Config represents the uddl.yaml configuration file.
type Config struct {
	Dialects         []string `yaml:"dialects"`
	OutputDir        string   `yaml:"output_dir"`
	Indent           string   `yaml:"indent"`
	GenerateDrop     bool     `yaml:"generate_drop"`
	Autofix          bool     `yaml:"autofix"`
	CheckConsistency bool     `yaml:"check_consistency"`
}

func defaultConfig() *Config {
	return &Config{
		Dialects:         []string{"postgresql"},
		OutputDir:        ".",
		Indent:           "  ",
		CheckConsistency: true,
	}
}

// loadConfig reads the config file and applies environment overrides.
// Precedence: CLI flags > env vars > config file > defaults; the flags are
// applied by the commands.
//
// A missing file is fine when it is the default one.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, alerr.Wrap(alerr.ErrConfig, err, "failed to parse config file").With("file", path)
		}
	case errors.Is(err, fs.ErrNotExist) && path == defaultConfigFile:
	default:
		return nil, alerr.Wrap(alerr.ErrConfig, err, "cannot read config file").With("file", path)
	}

	if env := os.Getenv("UDDL_DIALECTS"); env != "" {
		cfg.Dialects = splitList(env)
	}
	if env := os.Getenv("UDDL_OUTPUT_DIR"); env != "" {
		cfg.OutputDir = env
	}
	cfg.OutputDir = expandEnvVars(cfg.OutputDir)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Dialects) == 0 {
		return alerr.New(alerr.ErrConfig, "no dialect configured").
			WithHelp("set dialects in " + defaultConfigFile + " or pass -d postgresql")
	}
	for _, name := range c.Dialects {
		if _, err := dialect.Get(name); err != nil {
			return alerr.Wrapf(alerr.ErrConfig, err, "invalid dialect %q", name).
				WithHelp(alerr.SuggestSimilar(name, dialect.Names()))
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

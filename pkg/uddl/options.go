package uddl

// Config holds the options of Parse and ToRelationalModel.
type Config struct {
	// Filename is reported in syntax error locations.
	Filename string

	// Autofix rewrites forward-referencing foreign keys into deferred
	// alter table statements after parsing.
	Autofix bool

	// CheckConsistency validates the parsed schema. Parse fails with a
	// *ValidationError when the schema is inconsistent.
	CheckConsistency bool
}

// Option is a functional option for Parse and ToRelationalModel.
type Option func(*Config)

// WithFilename sets the file name used in error locations.
func WithFilename(name string) Option {
	return func(c *Config) {
		c.Filename = name
	}
}

// WithAutofix applies the foreign key autofix after parsing.
func WithAutofix() Option {
	return func(c *Config) {
		c.Autofix = true
	}
}

// WithConsistencyCheck validates the schema after parsing (and after the
// autofix, when both are set).
func WithConsistencyCheck() Option {
	return func(c *Config) {
		c.CheckConsistency = true
	}
}

// WithoutConsistencyCheck makes ToRelationalModel trust its input. An
// inconsistent schema then fails with a contract error from the builder.
func WithoutConsistencyCheck() Option {
	return func(c *Config) {
		c.CheckConsistency = false
	}
}

func newConfig(defaults Config, opts []Option) Config {
	cfg := defaults
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// AutofixConfig holds the options of Autofix.
type AutofixConfig struct {
	// ForeignKeys enables the forward-reference foreign key fix.
	// Default: true
	ForeignKeys bool
}

// AutofixOption is a functional option for Autofix.
type AutofixOption func(*AutofixConfig)

// FixForeignKeys enables or disables the foreign key fix.
func FixForeignKeys(enabled bool) AutofixOption {
	return func(c *AutofixConfig) {
		c.ForeignKeys = enabled
	}
}

// GenerateConfig holds the options of Generate and GenerateAll.
type GenerateConfig struct {
	// IndentUnit is the indentation of one nesting level.
	// Default: two spaces
	IndentUnit string

	// GenerateDrop prefixes the output with drop statements for every
	// created table, in reverse order.
	GenerateDrop bool
}

// GenerateOption is a functional option for Generate and GenerateAll.
type GenerateOption func(*GenerateConfig)

// WithIndent sets the indentation unit.
func WithIndent(unit string) GenerateOption {
	return func(c *GenerateConfig) {
		c.IndentUnit = unit
	}
}

// WithDrop requests drop statements before the schema.
func WithDrop() GenerateOption {
	return func(c *GenerateConfig) {
		c.GenerateDrop = true
	}
}

package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/analyzer"
	"github.com/ppiankov/pgreport/internal/logging"
	"github.com/ppiankov/pgreport/internal/reporter"
	"github.com/ppiankov/pgreport/internal/sheetwriter"
	"github.com/spf13/viper"
)

// Output formats for the analyze command
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatBoth     = "both"
)

var colorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Config holds all configuration for pgreport
type Config struct {
	// Input used when analyze is called without arguments
	ExcelDefaultFile string `mapstructure:"excel_default_file"`

	// Input used when convert is called without arguments
	HTMLDefaultFile string `mapstructure:"html_default_file"`

	// Output format (markdown, json, both)
	Format string `mapstructure:"format"`

	// Report list lengths
	TopQueries       int `mapstructure:"top_queries"`
	TopWalQueries    int `mapstructure:"top_wal_queries"`
	TopTables        int `mapstructure:"top_tables"`
	MaxUnusedIndexes int `mapstructure:"max_unused_indexes"`
	DropIndexSamples int `mapstructure:"drop_index_samples"`
	PreviewLength    int `mapstructure:"preview_length"`

	// Excel formatting for convert
	HeaderColor    string `mapstructure:"header_color"`
	RowColor       string `mapstructure:"row_color"`
	AutoFilter     bool   `mapstructure:"autofilter"`
	AutofitColumns bool   `mapstructure:"autofit_columns"`
	MaxColumnWidth int    `mapstructure:"max_column_width"`

	// Threshold override file; discovered from the working directory when empty
	ThresholdsFile string `mapstructure:"thresholds_file"`

	// Rotating log file; disabled when empty
	LogFile       string `mapstructure:"log_file"`
	LogMaxSize    int    `mapstructure:"log_max_size"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAge     int    `mapstructure:"log_max_age"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ExcelDefaultFile: "20 RPS.xlsx",
		HTMLDefaultFile:  "20 RPS.html",
		Format:           FormatMarkdown,
		TopQueries:       10,
		TopWalQueries:    5,
		TopTables:        10,
		MaxUnusedIndexes: 10,
		DropIndexSamples: 3,
		PreviewLength:    50,
		HeaderColor:      "90EE90",
		RowColor:         "F0FFF0",
		AutoFilter:       true,
		AutofitColumns:   true,
		MaxColumnWidth:   50,
		LogMaxSize:       10,
		LogMaxBackups:    3,
		LogMaxAge:        28,
	}
}

// LoadFromFile loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (configPath, or ./pgreport.yaml, ~/pgreport.yaml, $XDG_CONFIG_HOME/pgreport/pgreport.yaml)
// 3. Environment variables (PGREPORT_*)
// 4. CLI flags (handled by caller)
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("excel_default_file", defaults.ExcelDefaultFile)
	v.SetDefault("html_default_file", defaults.HTMLDefaultFile)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("top_queries", defaults.TopQueries)
	v.SetDefault("top_wal_queries", defaults.TopWalQueries)
	v.SetDefault("top_tables", defaults.TopTables)
	v.SetDefault("max_unused_indexes", defaults.MaxUnusedIndexes)
	v.SetDefault("drop_index_samples", defaults.DropIndexSamples)
	v.SetDefault("preview_length", defaults.PreviewLength)
	v.SetDefault("header_color", defaults.HeaderColor)
	v.SetDefault("row_color", defaults.RowColor)
	v.SetDefault("autofilter", defaults.AutoFilter)
	v.SetDefault("autofit_columns", defaults.AutofitColumns)
	v.SetDefault("max_column_width", defaults.MaxColumnWidth)
	v.SetDefault("thresholds_file", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size", defaults.LogMaxSize)
	v.SetDefault("log_max_backups", defaults.LogMaxBackups)
	v.SetDefault("log_max_age", defaults.LogMaxAge)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	v.SetConfigName("pgreport")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "pgreport"))
		}
	}

	v.SetEnvPrefix("PGREPORT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		FormatMarkdown: true,
		FormatJSON:     true,
		FormatBoth:     true,
	}
	if !validFormats[c.Format] {
		return errors.Errorf("invalid format: %s (must be markdown, json, or both)", c.Format)
	}

	limits := []struct {
		name  string
		value int
	}{
		{"top_queries", c.TopQueries},
		{"top_wal_queries", c.TopWalQueries},
		{"top_tables", c.TopTables},
		{"max_unused_indexes", c.MaxUnusedIndexes},
		{"drop_index_samples", c.DropIndexSamples},
		{"preview_length", c.PreviewLength},
		{"max_column_width", c.MaxColumnWidth},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return errors.Errorf("%s must be positive", l.name)
		}
	}

	if !colorPattern.MatchString(c.HeaderColor) {
		return errors.Errorf("header_color must be a 6-digit hex RGB value, got %q", c.HeaderColor)
	}
	if !colorPattern.MatchString(c.RowColor) {
		return errors.Errorf("row_color must be a 6-digit hex RGB value, got %q", c.RowColor)
	}

	if c.ExcelDefaultFile == "" || c.HTMLDefaultFile == "" {
		return errors.New("default input files cannot be empty")
	}

	return nil
}

// AnalyzerOptions returns the list lengths for the analyzer. Thresholds are
// resolved separately.
func (c *Config) AnalyzerOptions() analyzer.Options {
	opts := analyzer.DefaultOptions()
	opts.TopQueries = c.TopQueries
	opts.TopWalQueries = c.TopWalQueries
	opts.TopTables = c.TopTables
	opts.PreviewLength = c.PreviewLength
	return opts
}

// MarkdownOptions returns the Markdown renderer settings.
func (c *Config) MarkdownOptions() reporter.MarkdownOptions {
	return reporter.MarkdownOptions{
		MaxUnusedIndexes: c.MaxUnusedIndexes,
		DropIndexSamples: c.DropIndexSamples,
	}
}

// SheetOptions returns the Excel formatting settings.
func (c *Config) SheetOptions() sheetwriter.Options {
	return sheetwriter.Options{
		HeaderColor:    c.HeaderColor,
		RowColor:       c.RowColor,
		AutoFilter:     c.AutoFilter,
		AutoFit:        c.AutofitColumns,
		MaxColumnWidth: c.MaxColumnWidth,
	}
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Verbose:    c.Verbose,
		Debug:      c.Debug,
		File:       c.LogFile,
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge,
		FileLevel:  "info",
	}
}

// WantsMarkdown reports whether the Markdown report is written.
func (c *Config) WantsMarkdown() bool {
	return c.Format == FormatMarkdown || c.Format == FormatBoth
}

// WantsJSON reports whether the JSON analysis is written.
func (c *Config) WantsJSON() bool {
	return c.Format == FormatJSON || c.Format == FormatBoth
}

// ConfigPath returns the user-level config file location:
// $XDG_CONFIG_HOME/pgreport/pgreport.yaml, or ~/pgreport.yaml.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pgreport", "pgreport.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "pgreport.yaml")
	}
	return "pgreport.yaml"
}

// WriteSample writes the sample configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteSample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	if err := os.WriteFile(path, []byte(GenerateSampleConfig()), 0644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# pgreport Configuration
# Save this file as ./pgreport.yaml, ~/pgreport.yaml or $XDG_CONFIG_HOME/pgreport/pgreport.yaml
# Every key can also be set via PGREPORT_<KEY>, e.g. PGREPORT_FORMAT=both

# Inputs used when no files are given (looked up next to the executable)
excel_default_file: "20 RPS.xlsx"
html_default_file: "20 RPS.html"

# analyze output: markdown, json, or both
format: markdown

# Report list lengths
top_queries: 10
top_wal_queries: 5
top_tables: 10
max_unused_indexes: 10
drop_index_samples: 3
preview_length: 50

# convert formatting (hex RGB)
header_color: "90EE90"
row_color: "F0FFF0"
autofilter: true
autofit_columns: true
max_column_width: 50

# Threshold overrides (default: .pgreport-thresholds.yaml found from the working directory up)
# thresholds_file: ./thresholds.yaml

# Rotating log file (disabled when empty)
# log_file: pgreport.log
log_max_size: 10
log_max_backups: 3
log_max_age: 28

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}

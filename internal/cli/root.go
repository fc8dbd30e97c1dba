package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/config"
	"github.com/ppiankov/pgreport/internal/logging"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/ppiankov/pgreport/internal/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ExitOK           = 0 // Success, including batches with failed files
	ExitInvalidInput = 2 // Workbook layout or argument error
	ExitRuntimeError = 3 // I/O, permissions, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pgreport",
	Short: "pgreport - PostgreSQL monitoring export analyzer",
	Long: `pgreport turns PostgreSQL monitoring exports into readable reports.

It provides:
- Markdown analysis of Excel exports (databases, WAL, queries, tables, indexes)
- Threshold checks with prioritized recommendations
- Conversion of HTML monitoring pages into formatted Excel workbooks
- An interactive browser over the findings

Quick start:
  pgreport convert "20 RPS.html"
  pgreport analyze "20 RPS.xlsx"

Other commands:
  pgreport analyze "*.xlsx" --format both
  pgreport validate "20 RPS.xlsx"
  pgreport browse "20 RPS.xlsx"
  pgreport config --write`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		logging.Init(cfg.LoggingOptions())
		logDebug("config loaded (format=%s, thresholds=%q)", cfg.Format, cfg.ThresholdsFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		stop()
		os.Exit(HandleError(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./pgreport.yaml, ~/pgreport.yaml or $XDG_CONFIG_HOME/pgreport/pgreport.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return ExitInvalidInput
	}
	var aerr *ArgumentError
	if errors.As(err, &aerr) {
		return ExitInvalidInput
	}
	return ExitRuntimeError
}

// ArgumentError represents unusable command-line input
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// resolveThresholds picks the override file from flag, then config, then
// discovery from the working directory.
func resolveThresholds(flagPath string) (thresholds.Thresholds, error) {
	path := flagPath
	if path == "" && cfg != nil {
		path = cfg.ThresholdsFile
	}

	th, used, err := thresholds.Resolve(path)
	if err != nil {
		return th, err
	}
	if used != "" {
		logVerbose("Using thresholds from %s", used)
	}
	return th, nil
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	zap.S().Infof(format, args...)
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	zap.S().Debugf(format, args...)
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	zap.S().Errorf(format, args...)
}

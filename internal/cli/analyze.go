package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/analyzer"
	"github.com/ppiankov/pgreport/internal/config"
	"github.com/ppiankov/pgreport/internal/console"
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/reporter"
	"github.com/ppiankov/pgreport/internal/storage"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/spf13/cobra"
)

var (
	// Analyze command flags
	analyzeFormat      string
	analyzeDigest      bool
	analyzeJSONSummary bool
	analyzeThresholds  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [files or patterns...]",
	Short: "Analyze Excel monitoring exports and write Markdown reports",
	Long: `Analyze reads PostgreSQL monitoring workbooks and writes a Markdown report
named ReportDB_<name>.md next to each input.

The report covers:
- Database statistics with cache, deadlock, temp file and rollback checks
- WAL volume, generation rate and the queries producing it
- Top queries by execution time with their problems
- Tables needing VACUUM or ANALYZE
- Indexes that were never scanned, with DROP INDEX statements
- A summary with prioritized recommendations

Arguments may be file names or glob patterns. Without arguments the configured
default file next to the executable is analyzed.

Example:
  pgreport analyze
  pgreport analyze "20 RPS.xlsx" "40 RPS.xlsx"
  pgreport analyze "*.xlsx" --format both
  pgreport analyze report.xlsx --thresholds strict.yaml --digest`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "",
		"output format: markdown, json or both (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeDigest, "digest", false,
		"print a plain-text digest of each analysis to stdout")
	analyzeCmd.Flags().BoolVar(&analyzeJSONSummary, "json-summary", false,
		"write only the verdict and issue list to the JSON output")
	analyzeCmd.Flags().StringVar(&analyzeThresholds, "thresholds", "",
		"threshold override file (default: discovered .pgreport-thresholds.yaml)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeFormat != "" {
		switch analyzeFormat {
		case config.FormatMarkdown, config.FormatJSON, config.FormatBoth:
			cfg.Format = analyzeFormat
		default:
			return &ArgumentError{Message: "invalid format: " + analyzeFormat + " (must be markdown, json or both)"}
		}
	}

	th, err := resolveThresholds(analyzeThresholds)
	if err != nil {
		return err
	}

	opts := cfg.AnalyzerOptions()
	opts.Thresholds = th

	runBatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, batchJob{
		Title:       "PostgreSQL statistics analysis from Excel",
		DefaultFile: cfg.ExcelDefaultFile,
		Process: func(ctx context.Context, p *console.Printer, path string) (string, error) {
			return analyzeFile(p, path, analyzer.New(opts))
		},
	})
	return nil
}

// analyzeFile runs the Excel pipeline for one input and returns the path of
// the last report written.
func analyzeFile(p *console.Printer, path string, a *analyzer.Analyzer) (string, error) {
	p.Info("Loading data from Excel...")
	wb, err := loadWorkbook(path)
	if err != nil {
		return "", err
	}
	for _, name := range wb.Order {
		p.Detail("✓ %s: %d rows", name, wb.Sheet(name).Len())
	}
	for _, serr := range wb.Errors {
		p.Failure("Error loading sheet %s: %v", serr.Sheet, serr.Err)
	}

	analysis := a.Analyze(wb)
	store := outputStore(path)
	logDebug("writing outputs for %s to %s", wb.Name, store.Dir())

	var written string
	if cfg.WantsMarkdown() {
		name := storage.ReportName(path, ".md")
		p.Info("\nGenerating report in %s...", name)
		written, err = store.Save(name, func(w io.Writer) error {
			return reporter.NewMarkdownReporter(w, cfg.MarkdownOptions()).Generate(analysis)
		})
		if err != nil {
			return "", errors.Wrap(err, "write markdown report")
		}
		p.Success("Report saved to %s", filepath.Base(written))
	}

	if cfg.WantsJSON() {
		name := storage.ReportName(path, ".json")
		written, err = store.Save(name, func(w io.Writer) error {
			return writeJSON(w, analysis, analyzeJSONSummary)
		})
		if err != nil {
			return "", errors.Wrap(err, "write json analysis")
		}
		p.Success("Analysis saved to %s", filepath.Base(written))
	}

	if analyzeDigest {
		p.Info("")
		if err := reporter.NewTextReporter(p.Writer()).Generate(analysis); err != nil {
			return "", err
		}
	}

	logVerbose("%s: %d issues, health %s", wb.Name, len(analysis.Issues), analysis.Summary.HealthScore)
	return written, nil
}

func writeJSON(w io.Writer, a *models.Analysis, summaryOnly bool) error {
	r := reporter.NewJSONReporter(w, true)
	if summaryOnly {
		return r.GenerateSummaryOnly(a)
	}
	return r.Generate(a)
}

// analyzeWorkbook loads and analyzes a single workbook with the resolved
// thresholds. Used by commands that need the analysis without writing it.
func analyzeWorkbook(path string, th thresholds.Thresholds) (*models.Analysis, error) {
	wb, err := loadWorkbook(path)
	if err != nil {
		return nil, err
	}
	opts := cfg.AnalyzerOptions()
	opts.Thresholds = th
	return analyzer.New(opts).Analyze(wb), nil
}

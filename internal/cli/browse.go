package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/pgreport/internal/console"
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/tui"
	"github.com/spf13/cobra"
)

var browseThresholds string

// stdoutIsTerminal gates the interactive browser.
var stdoutIsTerminal = func() bool { return console.IsTerminal(os.Stdout) }

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse <file.xlsx|analysis.json>",
	Short: "Browse findings interactively",
	Long: `Browse opens an interactive table of every finding in a workbook, with the
suggested remedy for the selected row.

The input is either an Excel export, analyzed on the fly, or a JSON analysis
written by 'analyze --format json'.

Keys:
  /      search          t  cycle topic
  v      cycle severity  s  cycle sort
  c      copy remedy     esc clear filters
  q      quit

Example:
  pgreport browse "20 RPS.xlsx"
  pgreport browse "ReportDB_20 RPS.json"`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseThresholds, "thresholds", "",
		"threshold override file (default: discovered .pgreport-thresholds.yaml)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return &ArgumentError{Message: "browse requires an interactive terminal; use 'analyze --digest' instead"}
	}

	analysis, err := loadAnalysis(args[0], browseThresholds)
	if err != nil {
		return err
	}
	logVerbose("browsing %d issues from %s", len(analysis.Issues), analysis.Source)

	return tui.Run(analysis)
}

// loadAnalysis reads a saved JSON analysis or analyzes a workbook.
func loadAnalysis(path, thresholdsPath string) (*models.Analysis, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return outputStore(path).LoadAnalysis(filepath.Base(path))
	}

	th, err := resolveThresholds(thresholdsPath)
	if err != nil {
		return nil, err
	}
	return analyzeWorkbook(path, th)
}

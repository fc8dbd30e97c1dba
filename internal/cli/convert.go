package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/console"
	"github.com/ppiankov/pgreport/internal/htmlreport"
	"github.com/ppiankov/pgreport/internal/sheetwriter"
	"github.com/ppiankov/pgreport/internal/storage"
	"github.com/spf13/cobra"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [files or patterns...]",
	Short: "Convert HTML monitoring reports into Excel workbooks",
	Long: `Convert extracts the embedded report data from HTML monitoring pages and
writes a formatted workbook named <name>.xlsx next to each input.

The workbook holds a Properties sheet, one sheet per non-empty dataset and a
Sections sheet. Headers are bold and colored, data rows are filled, columns
are sized to their content and an auto-filter spans the data. Formatting
comes from the config file.

Example:
  pgreport convert
  pgreport convert "20 RPS.html"
  pgreport convert "reports/*.html"`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	writer := sheetwriter.New(cfg.SheetOptions())

	runBatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, batchJob{
		Title:       "Parsing PostgreSQL HTML reports into Excel",
		DefaultFile: cfg.HTMLDefaultFile,
		Process: func(ctx context.Context, p *console.Printer, path string) (string, error) {
			return convertFile(p, path, writer)
		},
	})
	return nil
}

// convertFile runs the HTML pipeline for one input and returns the workbook
// path.
func convertFile(p *console.Printer, path string, writer *sheetwriter.Writer) (string, error) {
	p.Info("Reading file: %s", filepath.Base(path))
	payload, err := htmlreport.ParseFile(path)
	if err != nil {
		return "", err
	}
	p.Info("Found %d datasets", payload.DatasetCount)

	name := storage.WorkbookName(path)
	p.Info("Saving data to Excel: %s", name)

	var result *sheetwriter.Result
	written, err := outputStore(path).Save(name, func(w io.Writer) error {
		var werr error
		result, werr = writer.Write(payload, w)
		return werr
	})
	if err != nil {
		return "", errors.Wrap(err, "write workbook")
	}

	for _, sheet := range result.Sheets {
		p.Detail("✓ Sheet '%s' created (%d rows, %d columns)", sheet.Name, sheet.Rows, sheet.Columns)
	}
	for _, serr := range result.Errors {
		p.Failure("Error processing '%s': %v", serr.Name, serr.Err)
	}

	p.Success("Data saved to %s", filepath.Base(written))
	return written, nil
}

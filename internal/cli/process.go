package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ppiankov/pgreport/internal/batch"
	"github.com/ppiankov/pgreport/internal/console"
	"github.com/ppiankov/pgreport/internal/storage"
	"github.com/ppiankov/pgreport/internal/workbook"
)

// defaultInputDir is where the default file is looked up; the executable's
// directory when empty.
var defaultInputDir string

// loadWorkbook reads an Excel export.
var loadWorkbook = workbook.Load

// outputStore returns the storage for the outputs of one input file.
var outputStore = func(inputPath string) storage.Storage {
	return storage.ForInput(inputPath)
}

// batchJob describes one batch command run.
type batchJob struct {
	Title       string // banner printed before the file list
	DefaultFile string // used when no arguments are given
	Process     func(ctx context.Context, p *console.Printer, path string) (string, error)
}

// runBatch resolves args, processes every file and prints the tally. Failed
// files are reported and counted; they do not fail the command.
func runBatch(ctx context.Context, out, errOut io.Writer, args []string, job batchJob) *batch.Summary {
	p := console.New(out)

	res := batch.Resolve(args, batch.Config{DefaultFile: job.DefaultFile, DefaultDir: defaultInputDir})
	for _, pattern := range res.Unmatched {
		p.Warning("Warning: pattern '%s' matched no files", pattern)
	}

	p.Info("")
	p.Banner(job.Title)
	p.Info("\nFound %d files to process\n", len(res.Files))

	summary := batch.Run(ctx, res.Files, func(ctx context.Context, path string) error {
		name := filepath.Base(path)
		p.Banner("Processing file: " + name)
		p.Info("")

		output, err := job.Process(ctx, p, path)
		if err != nil {
			return err
		}

		p.Info("")
		p.Rule()
		p.Success("File %s processed successfully!", name)
		p.Detail("Created: %s", filepath.Base(output))
		p.Rule()
		p.Info("")
		return nil
	}, batch.Hooks{
		Done: func(r batch.FileResult) {
			if r.OK() {
				return
			}
			p.Info("")
			p.Failure("Error processing %s: %v", filepath.Base(r.Path), r.Err)
			_, _ = fmt.Fprintf(errOut, "%+v\n", r.Err)
			logError("processing %s failed: %v", r.Path, r.Err)
		},
	})

	p.Tally(summary.Succeeded, summary.Failed, summary.Skipped)
	return summary
}

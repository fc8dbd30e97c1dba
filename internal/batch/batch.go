// Package batch resolves input arguments into files and runs a per-file
// pipeline over them one after another.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Processor handles one input file.
type Processor func(ctx context.Context, path string) error

// FileResult is the outcome for one file.
type FileResult struct {
	Path string
	Err  error
}

// OK reports whether the file was processed successfully.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Summary tallies a batch run.
type Summary struct {
	Results   []FileResult
	Succeeded int
	Failed    int
	Skipped   int
}

// Hooks observe progress. Either may be nil.
type Hooks struct {
	Start func(path string, index, total int)
	Done  func(result FileResult)
}

// Config holds configuration for the batch driver
type Config struct {
	// DefaultFile is processed when no arguments are given
	DefaultFile string
	// DefaultDir is where DefaultFile is looked up; the executable's
	// directory when empty
	DefaultDir string
}

// Resolution is the expanded argument list.
type Resolution struct {
	Files     []string
	Unmatched []string
}

// IsPattern reports whether arg contains glob wildcards.
func IsPattern(arg string) bool {
	return strings.ContainsAny(arg, "*?")
}

// Resolve expands arguments into file paths. Arguments with '*' or '?' are
// globbed and a pattern that matches nothing is reported in Unmatched;
// other arguments are kept as given so that a missing file fails at
// processing time. With no arguments the configured default file is used.
func Resolve(args []string, cfg Config) Resolution {
	var res Resolution

	if len(args) == 0 {
		res.Files = append(res.Files, DefaultPath(cfg))
		return res
	}

	for _, arg := range args {
		if !IsPattern(arg) {
			res.Files = append(res.Files, arg)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			zap.L().Warn("bad pattern", zap.String("pattern", arg), zap.Error(err))
		}
		if len(matches) == 0 {
			res.Unmatched = append(res.Unmatched, arg)
			continue
		}
		res.Files = append(res.Files, matches...)
	}
	return res
}

// DefaultPath returns the default input file path.
func DefaultPath(cfg Config) string {
	dir := cfg.DefaultDir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return cfg.DefaultFile
		}
		dir = filepath.Dir(exe)
	}
	return filepath.Join(dir, cfg.DefaultFile)
}

// Run processes files sequentially. A failing file is recorded and the batch
// continues. Cancelling ctx stops before the next file; the remaining files
// are counted as skipped.
func Run(ctx context.Context, files []string, process Processor, hooks Hooks) *Summary {
	summary := &Summary{Results: make([]FileResult, 0, len(files))}

	for i, path := range files {
		if ctx.Err() != nil {
			summary.Skipped = len(files) - i
			zap.L().Warn("batch cancelled", zap.Int("skipped", summary.Skipped))
			break
		}

		if hooks.Start != nil {
			hooks.Start(path, i, len(files))
		}

		result := FileResult{Path: path, Err: runOne(ctx, path, process)}
		if result.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
			zap.L().Debug("file failed", zap.String("file", path), zap.Error(result.Err))
		}
		summary.Results = append(summary.Results, result)

		if hooks.Done != nil {
			hooks.Done(result)
		}
	}

	return summary
}

// runOne turns a panic inside the pipeline into a per-file error.
func runOne(ctx context.Context, path string, process Processor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while processing %s: %v", filepath.Base(path), r)
		}
	}()
	return process(ctx, path)
}

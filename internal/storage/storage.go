package storage

import (
	"io"

	"github.com/ppiankov/pgreport/internal/models"
)

// RenderFunc writes one complete output document.
type RenderFunc func(w io.Writer) error

// Storage defines the interface for persisting generated reports
type Storage interface {
	// Save renders into the named file and returns its full path. The file
	// only appears once rendering has succeeded.
	Save(name string, render RenderFunc) (string, error)

	// LoadAnalysis reads a JSON analysis written by an earlier run
	LoadAnalysis(name string) (*models.Analysis, error)

	// Path returns the full path for an output file name
	Path(name string) string

	// Dir returns the directory outputs are written to
	Dir() string
}

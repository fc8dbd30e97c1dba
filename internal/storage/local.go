package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/models"
	"go.uber.org/zap"
)

const reportPrefix = "ReportDB_"

// LocalStorage implements Storage on the local filesystem, next to the
// input files.
type LocalStorage struct {
	baseDir string
}

// NewLocal creates a new local storage instance
func NewLocal(baseDir string) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
	}
}

// ForInput returns storage rooted in the directory of an input file.
func ForInput(inputPath string) *LocalStorage {
	return NewLocal(filepath.Dir(inputPath))
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReportName returns the report file name for an input, e.g.
// "20 RPS.xlsx" -> "ReportDB_20 RPS.md".
func ReportName(inputPath, ext string) string {
	return reportPrefix + Stem(inputPath) + ext
}

// WorkbookName returns the Excel file name for a converted HTML input.
func WorkbookName(inputPath string) string {
	return Stem(inputPath) + ".xlsx"
}

// Path returns the full path for an output file name
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// Dir returns the directory outputs are written to
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Save renders into the named file atomically
func (s *LocalStorage) Save(name string, render RenderFunc) (string, error) {
	path := s.Path(name)
	if err := WriteAtomic(path, render); err != nil {
		return "", err
	}
	zap.L().Debug("output written", zap.String("path", path))
	return path, nil
}

// LoadAnalysis reads a JSON analysis from the storage directory
func (s *LocalStorage) LoadAnalysis(name string) (*models.Analysis, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("analysis not found: %s", path)
		}
		return nil, errors.Wrap(err, "read analysis")
	}

	var a models.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrapf(err, "decode analysis %s", path)
	}
	return &a, nil
}

// WriteAtomic renders into a temporary file in the target directory and
// renames it into place. On any failure the temporary file is removed and
// an existing file at path is left untouched.
func WriteAtomic(path string, render RenderFunc) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = render(bw); err != nil {
		return errors.WithMessagef(err, "render %s", filepath.Base(path))
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "sync output")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return errors.Wrap(err, "chmod output")
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "rename output")
	}
	return nil
}

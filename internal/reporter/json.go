package reporter

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/pgreport/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the full analysis as JSON
func (r *JSONReporter) Generate(a *models.Analysis) error {
	return r.write(a)
}

// GenerateSummaryOnly writes the verdict and flat issue list without the
// per-entity metrics
func (r *JSONReporter) GenerateSummaryOnly(a *models.Analysis) error {
	summary := struct {
		Source      string              `json:"source"`
		GeneratedAt string              `json:"generated_at"`
		Period      models.ReportPeriod `json:"period"`
		Summary     models.Summary      `json:"summary"`
		Issues      []models.Issue      `json:"issues"`
	}{
		Source:      a.Source,
		GeneratedAt: a.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Period:      a.Period,
		Summary:     a.Summary,
		Issues:      a.Issues,
	}
	return r.write(summary)
}

func (r *JSONReporter) write(v interface{}) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}

package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/pgreport/internal/models"
)

// TextReporter prints a short plain-text digest of an analysis
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate prints the digest
func (r *TextReporter) Generate(a *models.Analysis) error {
	r.printf("Source: %s\n", a.Source)
	r.printf("Period: %s .. %s (%d min)\n", a.Period.Start, a.Period.End, a.Period.DurationMinutes)
	r.printf("--------------------------------------------------\n")

	r.printf("  Databases: %d\n", len(a.Databases))
	r.printf("  Top queries: %d\n", len(a.TopQueries))
	r.printf("  Problem tables: %d\n", len(a.ProblemTables))
	r.printf("  Unused indexes: %d\n", len(a.UnusedIndexes))
	if a.Wal != nil {
		r.printf("  WAL rate: %.2f MB/min (%s)\n", a.Wal.RatePerMinute, a.Wal.RateClass)
	}
	r.printf("  Health Score: %s", strings.ToUpper(a.Summary.HealthScore))
	if a.Summary.ScorePercent > 0 {
		r.printf(" (%.1f%%)", a.Summary.ScorePercent)
	}
	r.printf("\n\n")

	if len(a.Summary.IssuesBySeverity) > 0 {
		r.printf("Issues by Severity:\n")
		severities := make([]string, 0, len(a.Summary.IssuesBySeverity))
		for sev := range a.Summary.IssuesBySeverity {
			severities = append(severities, sev)
		}
		sort.Slice(severities, func(i, j int) bool {
			return severityRank(severities[i]) > severityRank(severities[j])
		})
		for _, sev := range severities {
			r.printf("  %s: %d\n", sev, a.Summary.IssuesBySeverity[sev])
		}
		r.printf("\n")
	}

	if len(a.Summary.Recommendations) > 0 {
		r.printf("Recommendations:\n")
		for i, rec := range a.Summary.Recommendations {
			r.printf("  %d. [%s] %s\n", i+1, strings.ToUpper(rec.Priority), plain(rec.Action))
		}
	}

	return nil
}

func (r *TextReporter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.writer, format, args...)
}

func severityRank(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 3
	case models.SeverityWarning:
		return 2
	case models.SeverityInfo:
		return 1
	default:
		return 0
	}
}

// plain strips Markdown emphasis for terminal output.
func plain(s string) string {
	return strings.NewReplacer("**", "", "`", "").Replace(s)
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

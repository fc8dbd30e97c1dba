package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pgreport/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from analysis data.
func renderHeader(a *models.Analysis, width int) string {
	var b strings.Builder
	summary := a.Summary

	// Line 1: source and health
	healthText := healthStyle(summary.HealthScore).Render(
		fmt.Sprintf("%s (%.0f%%)", strings.ToUpper(summary.HealthScore), summary.ScorePercent),
	)
	b.WriteString(fmt.Sprintf("pgreport  %s  Health: %s", a.Source, healthText))
	b.WriteString("\n")

	// Line 2: period and databases
	b.WriteString(fmt.Sprintf("Period: %s  Databases: %d  Issues: %d",
		periodLabel(a.Period), len(a.Databases), len(a.Issues)))
	b.WriteString("\n")

	// Line 3: severity breakdown
	sevParts := make([]string, 0, 3)
	for _, sev := range []string{models.SeverityCritical, models.SeverityWarning, models.SeverityInfo} {
		if count := summary.IssuesBySeverity[sev]; count > 0 {
			label := fmt.Sprintf("%s:%d", strings.ToUpper(sev[:1]), count)
			sevParts = append(sevParts, severityStyle(sev).Render(label))
		}
	}
	if len(sevParts) > 0 {
		b.WriteString(strings.Join(sevParts, "  "))
	}

	return styleHeader.Width(width).Render(b.String())
}

func periodLabel(p models.ReportPeriod) string {
	if p.DurationMinutes > 0 {
		return fmt.Sprintf("%s → %s (%d min)", p.Start, p.End, p.DurationMinutes)
	}
	return p.Start + " → " + p.End
}

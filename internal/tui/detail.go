package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pgreport/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 5

// renderDetail produces the detail view for a selected issue.
func renderDetail(issue *models.Issue, width int) string {
	if issue == nil {
		return styleDetailPanel.Width(width).Render("No issue selected")
	}

	var b strings.Builder

	sevStyled := severityStyle(issue.Severity).Render(strings.ToUpper(issue.Severity))
	b.WriteString(fmt.Sprintf("%s  %s / %s\n", sevStyled, issue.Topic, issue.Check))
	b.WriteString(fmt.Sprintf("Subject: %s\n", issue.Subject))
	b.WriteString(issue.Message)

	if issue.Remedy != "" {
		b.WriteString("\n")
		b.WriteString(styleRemedy.Render("Remedy: " + issue.Remedy))
	}

	return styleDetailPanel.Width(width).Render(b.String())
}

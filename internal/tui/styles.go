package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/pgreport/internal/models"
)

// Severity colors
var (
	colorCritical = lipgloss.Color("#FF0000")
	colorWarning  = lipgloss.Color("#FFFF00")
	colorInfo     = lipgloss.Color("#00BFFF")
	colorGood     = lipgloss.Color("#00FF00")
	colorMuted    = lipgloss.Color("#888888")
	colorAccent   = lipgloss.Color("#7B68EE")
	colorBorder   = lipgloss.Color("#444444")
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleRemedy = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)
)

// severityStyle returns the lipgloss style for a severity level.
func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case models.SeverityCritical:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	case models.SeverityWarning:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case models.SeverityInfo:
		return lipgloss.NewStyle().Foreground(colorInfo)
	default:
		return lipgloss.NewStyle()
	}
}

// healthStyle returns the lipgloss style for a health score level.
func healthStyle(health string) lipgloss.Style {
	switch health {
	case "excellent":
		return lipgloss.NewStyle().Foreground(colorGood).Bold(true)
	case "good":
		return lipgloss.NewStyle().Foreground(colorGood)
	case "warning":
		return lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	case "critical", "severe":
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	default:
		return lipgloss.NewStyle()
	}
}

package tui

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/pgreport/internal/models"
)

const defaultTableHeight = 15

// Model browses the issues of one analysis.
type Model struct {
	analysis *models.Analysis
	issues   []models.Issue // every issue, severity order
	topics   []string

	shown   []models.Issue // issues passing filters, in sortBy order
	filters filterState
	sortBy  sortField

	table     table.Model
	search    textinput.Model
	searching bool
	// prevSearch is restored when a search is cancelled
	prevSearch string

	width, height int
	status        string

	// clipboard holds the last copied text; the OSC 52 escape goes to out
	clipboard string
	out       io.Writer
}

// New creates a browser over a copy of the analysis issues.
func New(analysis *models.Analysis) Model {
	issues := append([]models.Issue(nil), analysis.Issues...)
	sortIssues(issues, sortBySeverity)

	search := textinput.New()
	search.Placeholder = "search..."
	search.CharLimit = 64

	return Model{
		analysis: analysis,
		issues:   issues,
		topics:   presentTopics(issues),
		shown:    issues,
		sortBy:   sortBySeverity,
		table:    newTable(buildRows(issues), defaultTableHeight),
		search:   search,
		width:    80,
		height:   24,
		out:      os.Stdout,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if m.searching {
			cmd = m.searchKey(msg)
		} else {
			cmd = m.listKey(msg)
		}
	default:
		if m.searching {
			m.search, cmd = m.search.Update(msg)
		} else {
			m.table, cmd = m.table.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-headerHeight-detailHeight-3, 3))
}

// listKey runs the first matching action; other keys move the table cursor.
func (m *Model) listKey(msg tea.KeyMsg) tea.Cmd {
	for _, a := range actions {
		if key.Matches(msg, a.binding) {
			return a.run(m)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// searchKey edits the query. The list narrows while typing.
func (m *Model) searchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keyDone):
		m.stopSearch()
		return nil
	case key.Matches(msg, keyBack):
		m.search.SetValue(m.prevSearch)
		m.filters.SearchText = m.prevSearch
		m.stopSearch()
		m.refresh()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if text := m.search.Value(); text != m.filters.SearchText {
		m.filters.SearchText = text
		m.refresh()
	}
	return cmd
}

func (m *Model) startSearch() tea.Cmd {
	m.searching = true
	m.prevSearch = m.filters.SearchText
	m.search.Focus()
	return textinput.Blink
}

func (m *Model) stopSearch() {
	m.searching = false
	m.search.Blur()
}

// applyFilter refreshes the list and reports the active value of a filter.
func (m *Model) applyFilter(label, value string) {
	m.refresh()
	m.status = ""
	if value != "" {
		m.status = label + ": " + value
	}
}

// refresh recomputes the visible issues and keeps the cursor in range.
func (m *Model) refresh() {
	shown := applyFilters(m.issues, m.filters)
	sortIssues(shown, m.sortBy)
	m.shown = shown
	m.table.SetRows(buildRows(shown))
	if m.table.Cursor() >= len(shown) {
		m.table.SetCursor(0)
	}
}

func (m *Model) selectedIssue() *models.Issue {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.shown) {
		return nil
	}
	return &m.shown[i]
}

// copySelectedRemedy writes the remedy of the selected issue to the
// clipboard via OSC 52, falling back to the message when there is none.
func (m *Model) copySelectedRemedy() {
	issue := m.selectedIssue()
	if issue == nil {
		m.status = "Nothing to copy"
		return
	}
	text := issue.Remedy
	if text == "" {
		text = fmt.Sprintf("[%s] %s %s: %s", issue.Severity, issue.Topic, issue.Subject, issue.Message)
	}
	m.clipboard = text
	m.status = "Copied!"
	if m.out != nil {
		fmt.Fprintf(m.out, "\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	}
}

// View implements tea.Model.
func (m Model) View() string {
	parts := []string{renderHeader(m.analysis, m.width)}
	if m.searching {
		parts = append(parts, styleSearchPrompt.Render("/ ")+m.search.View())
	}
	parts = append(parts,
		m.table.View(),
		renderDetail(m.selectedIssue(), m.width),
		m.footer(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// footer lists the key help on the left and the issue count on the right.
func (m Model) footer() string {
	var help []string
	if m.searching {
		help = []string{helpText(keyDone), helpText(keyBack)}
	} else {
		for _, a := range actions {
			help = append(help, helpText(a.binding))
		}
	}
	left := strings.Join(help, "  ")

	right := fmt.Sprintf("%d/%d issues", len(m.shown), len(m.issues))
	if m.status != "" {
		right = m.status + "  " + right
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

func helpText(b key.Binding) string {
	h := b.Help()
	return h.Key + ":" + h.Desc
}

// Run starts the browser on the alternate screen and blocks until it quits.
func Run(analysis *models.Analysis) error {
	_, err := tea.NewProgram(New(analysis), tea.WithAltScreen()).Run()
	return err
}

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// action binds a key to what it does in the findings list.
type action struct {
	binding key.Binding
	run     func(m *Model) tea.Cmd
}

var (
	keyDone = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done"))
	keyBack = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
)

// actions are matched in order; the footer lists them in the same order.
var actions = []action{
	{key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")), func(m *Model) tea.Cmd {
		return tea.Quit
	}},
	{key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")), (*Model).startSearch},
	{key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "topic")), func(m *Model) tea.Cmd {
		m.filters.Topic = nextTopic(m.topics, m.filters.Topic)
		m.applyFilter("Topic", m.filters.Topic)
		return nil
	}},
	{key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "severity")), func(m *Model) tea.Cmd {
		m.filters.Severity = nextSeverity(m.filters.Severity)
		m.applyFilter("Severity", m.filters.Severity)
		return nil
	}},
	{key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")), func(m *Model) tea.Cmd {
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.refresh()
		m.status = "Sort: " + sortFieldName(m.sortBy)
		return nil
	}},
	{key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")), func(m *Model) tea.Cmd {
		m.copySelectedRemedy()
		return nil
	}},
	{key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")), func(m *Model) tea.Cmd {
		m.filters = filterState{}
		m.search.SetValue("")
		m.status = ""
		m.refresh()
		return nil
	}},
}

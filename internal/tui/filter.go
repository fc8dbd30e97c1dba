package tui

import (
	"sort"
	"strings"

	"github.com/ppiankov/pgreport/internal/models"
	"github.com/scylladb/go-set/strset"
)

// filterState holds current active filters.
type filterState struct {
	Topic      string
	Severity   string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortBySeverity sortField = iota
	sortByTopic
	sortByCheck
	sortBySubject
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 4

var severityPriority = map[string]int{
	models.SeverityCritical: 0,
	models.SeverityWarning:  1,
	models.SeverityInfo:     2,
}

// severityCycle is the order the severity filter steps through; "" shows all.
var severityCycle = []string{"", models.SeverityCritical, models.SeverityWarning, models.SeverityInfo}

// topicOrder follows the report section order.
var topicOrder = []string{
	models.TopicDatabase,
	models.TopicWal,
	models.TopicQuery,
	models.TopicTable,
	models.TopicIndex,
}

// applyFilters returns issues matching all active filters.
func applyFilters(issues []models.Issue, f filterState) []models.Issue {
	result := make([]models.Issue, 0, len(issues))
	searchLower := strings.ToLower(f.SearchText)

	for _, issue := range issues {
		if f.Topic != "" && issue.Topic != f.Topic {
			continue
		}
		if f.Severity != "" && issue.Severity != f.Severity {
			continue
		}
		if searchLower != "" && !matchesSearch(issue, searchLower) {
			continue
		}
		result = append(result, issue)
	}
	return result
}

func matchesSearch(issue models.Issue, searchLower string) bool {
	return strings.Contains(strings.ToLower(issue.Topic), searchLower) ||
		strings.Contains(strings.ToLower(issue.Check), searchLower) ||
		strings.Contains(strings.ToLower(issue.Severity), searchLower) ||
		strings.Contains(strings.ToLower(issue.Subject), searchLower) ||
		strings.Contains(strings.ToLower(issue.Message), searchLower) ||
		strings.Contains(strings.ToLower(issue.Remedy), searchLower)
}

// sortIssues sorts a slice of issues in place by the given field.
func sortIssues(issues []models.Issue, field sortField) {
	sort.SliceStable(issues, func(i, j int) bool {
		switch field {
		case sortBySeverity:
			return severityPriority[issues[i].Severity] < severityPriority[issues[j].Severity]
		case sortByTopic:
			return topicRank(issues[i].Topic) < topicRank(issues[j].Topic)
		case sortByCheck:
			return issues[i].Check < issues[j].Check
		case sortBySubject:
			return issues[i].Subject < issues[j].Subject
		default:
			return false
		}
	})
}

func topicRank(topic string) int {
	for i, t := range topicOrder {
		if t == topic {
			return i
		}
	}
	return len(topicOrder)
}

// presentTopics returns the topics that have at least one issue, in report
// order.
func presentTopics(issues []models.Issue) []string {
	seen := strset.New()
	for _, issue := range issues {
		seen.Add(issue.Topic)
	}
	var topics []string
	for _, t := range topicOrder {
		if seen.Has(t) {
			topics = append(topics, t)
		}
	}
	return topics
}

// nextSeverity returns the severity filter following current.
func nextSeverity(current string) string {
	return cycle(severityCycle, current)
}

// nextTopic returns the topic filter following current; "" (all topics)
// precedes the first topic.
func nextTopic(topics []string, current string) string {
	return cycle(append([]string{""}, topics...), current)
}

// cycle returns the option after current, wrapping around. An unknown
// current restarts at the first option.
func cycle(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortBySeverity:
		return "severity"
	case sortByTopic:
		return "topic"
	case sortByCheck:
		return "check"
	case sortBySubject:
		return "subject"
	default:
		return "unknown"
	}
}

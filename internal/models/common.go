package models

import "time"

// Severity levels for findings
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Priority levels for summary recommendations
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Check identifiers, in the order the checks run.
const (
	CheckLowCacheHit   = "low_cache_hit"
	CheckDeadlocks     = "deadlocks"
	CheckTempFiles     = "temp_files"
	CheckHighRollback  = "high_rollback"
	CheckSlowQuery     = "slow_query"
	CheckQueryTemp     = "query_temp"
	CheckQueryLowCache = "query_low_cache"
	CheckTableBloat    = "table_bloat"
	CheckStaleStats    = "stale_stats"
	CheckSeqScan       = "seq_scan"
	CheckWalRate       = "wal_rate"
)

// Topics group issues for browsing.
const (
	TopicDatabase = "database"
	TopicQuery    = "query"
	TopicTable    = "table"
	TopicIndex    = "index"
	TopicWal      = "wal"
)

// Finding is a severity-tagged message produced by a single threshold check.
type Finding struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Recommendation represents an actionable item for the summary section
type Recommendation struct {
	Priority string `json:"priority"` // high, medium, low
	Action   string `json:"action"`
	Count    int    `json:"count,omitempty"`
}

// Issue is the flat form of a finding used by the browser and JSON output.
type Issue struct {
	Topic    string `json:"topic"`    // database, query, table, index, wal
	Subject  string `json:"subject"`  // db name / query id / schema.table
	Check    string `json:"check"`    // check identifier
	Severity string `json:"severity"` // critical, warning, info
	Message  string `json:"message"`
	Remedy   string `json:"remedy,omitempty"`
}

// Summary is the aggregate verdict over one workbook.
type Summary struct {
	Healthy          []string         `json:"healthy"`
	Critical         []string         `json:"critical"`
	Recommendations  []Recommendation `json:"recommendations"`
	IssuesBySeverity map[string]int   `json:"issues_by_severity"`
	HealthScore      string           `json:"health_score"`  // excellent, good, warning, critical, severe
	ScorePercent     float64          `json:"score_percent"` // 0-100
}

// Analysis contains everything derived from one workbook.
type Analysis struct {
	Source        string            `json:"source"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Period        ReportPeriod      `json:"period"`
	Databases     []DatabaseMetrics `json:"databases"`
	Wal           *WalSummary       `json:"wal,omitempty"`
	WalQueries    []WalQuery        `json:"wal_queries"`
	TopQueries    []QueryMetrics    `json:"top_queries"`
	ProblemTables []TableMetrics    `json:"problem_tables"`
	UnusedIndexes []UnusedIndex     `json:"unused_indexes"`
	Issues        []Issue           `json:"issues"`
	Summary       Summary           `json:"summary"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// CalculateHealthScore determines overall health from affected vs total entities.
// score = (total - affected) / total * 100, clamped 0-100.
func CalculateHealthScore(affected, total int) (string, float64) {
	if total == 0 {
		return "unknown", 0.0
	}

	score := float64(total-affected) / float64(total) * 100.0

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var health string
	switch {
	case score >= 95:
		health = "excellent"
	case score >= 85:
		health = "good"
	case score >= 70:
		health = "warning"
	case score >= 50:
		health = "critical"
	default:
		health = "severe"
	}

	return health, score
}

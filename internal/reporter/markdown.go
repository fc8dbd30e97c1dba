package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ppiankov/pgreport/internal/analyzer"
	"github.com/ppiankov/pgreport/internal/format"
	"github.com/ppiankov/pgreport/internal/models"
)

const (
	placeholderUnavailable = "*Data unavailable*"
	sectionRule            = "---\n\n"
)

// MarkdownOptions controls list lengths in the report.
type MarkdownOptions struct {
	MaxUnusedIndexes int
	DropIndexSamples int
}

// DefaultMarkdownOptions returns the stock list lengths.
func DefaultMarkdownOptions() MarkdownOptions {
	return MarkdownOptions{MaxUnusedIndexes: 10, DropIndexSamples: 3}
}

// MarkdownReporter renders an analysis as a Markdown diagnostic report.
type MarkdownReporter struct {
	writer io.Writer
	opts   MarkdownOptions
	err    error
}

// NewMarkdownReporter creates a new Markdown reporter
func NewMarkdownReporter(writer io.Writer, opts MarkdownOptions) *MarkdownReporter {
	return &MarkdownReporter{
		writer: writer,
		opts:   opts,
	}
}

// Generate writes every section in fixed order. Empty sections keep their
// heading and carry a placeholder.
func (r *MarkdownReporter) Generate(a *models.Analysis) error {
	r.err = nil

	r.printHeader(a)
	r.printPeriod(a.Period)
	r.printDatabases(a.Databases)
	r.printWal(a.Wal)
	r.printWalQueries(a.WalQueries)
	r.printTopQueries(a.TopQueries)
	r.printProblemTables(a.ProblemTables)
	r.printUnusedIndexes(a.UnusedIndexes)
	r.printSummary(a.Summary)
	r.printFooter(a)

	return r.err
}

func (r *MarkdownReporter) printHeader(a *models.Analysis) {
	r.printf("# 📊 PostgreSQL Performance Analysis\n\n")
	r.printf("**Analysis date**: %s\n\n", formatTimestamp(a.GeneratedAt))
	if len(a.Warnings) > 0 {
		r.printf("> **Note**: some input could not be read:\n")
		for _, w := range a.Warnings {
			r.printf("> - %s\n", w)
		}
		r.printf("\n")
	}
}

func (r *MarkdownReporter) printPeriod(p models.ReportPeriod) {
	r.printf("## ⏱️ Monitoring Period\n\n")
	r.printf("- **Start**: `%s`\n", p.Start)
	r.printf("- **End**: `%s`\n", p.End)
	r.printf("- **Duration**: %d minutes\n\n", p.DurationMinutes)
	r.printf(sectionRule)
}

func (r *MarkdownReporter) printDatabases(dbs []models.DatabaseMetrics) {
	r.printf("## 🗄️ Database Statistics\n\n")

	if len(dbs) == 0 {
		r.printf("%s\n\n", placeholderUnavailable)
	}

	for _, db := range dbs {
		r.printf("### Database: `%s`\n\n", db.Name)

		rollbacks := format.OptCount(db.Rollbacks)
		if rollbacks != "" && db.RollbackRatio.Valid {
			rollbacks += fmt.Sprintf(" (%s)", format.Percent(db.RollbackRatio.Value))
		}

		r.printTable([]string{"Metric", "Value"}, [][]string{
			{"**Database size**", db.Size},
			{"**Size change**", db.SizeDelta},
			{"**Cache hit ratio**", format.OptPercent(db.CacheHitPct)},
			{"**Commits**", format.OptCount(db.Commits)},
			{"**Rollbacks**", rollbacks},
			{"**Deadlocks**", nonZeroCount(db.Deadlocks)},
			{"**Temp files**", nonZeroCount(db.TempFiles)},
		})

		if len(db.Findings) > 0 {
			r.printf("**⚠️ Findings:**\n\n")
			r.printFindings(db.Findings)
		} else {
			r.printf("✅ **No problems detected**\n\n")
		}
	}

	r.printf(sectionRule)
}

func (r *MarkdownReporter) printWal(w *models.WalSummary) {
	r.printf("## 📝 Write-Ahead Log (WAL) Statistics\n\n")

	if w == nil {
		r.printf("%s\n\n", placeholderUnavailable)
		return
	}

	r.printTable([]string{"Metric", "Value"}, [][]string{
		{"**WAL records**", format.OptCount(w.Records)},
		{"**Full page images**", format.OptCount(w.FPI)},
		{"**WAL volume**", fmt.Sprintf("%s MB (%s GB)", format.Fixed(w.SizeMB, 2), format.Fixed(w.SizeGB, 3))},
		{"**Write time**", optMillis(w.WriteTime)},
		{"**Sync time**", optMillis(w.SyncTime)},
	})

	r.printf("**WAL generation rate**: %s MB/min\n\n", format.Fixed(w.RatePerMinute, 2))

	switch w.RateClass {
	case models.WalRateHigh:
		r.printf("⚠️ **High WAL generation rate** - likely heavy write activity\n\n")
	case models.WalRateModerate:
		r.printf("⚡ **Moderate write activity**\n\n")
	default:
		r.printf("✅ **Normal write activity**\n\n")
	}
}

func (r *MarkdownReporter) printWalQueries(queries []models.WalQuery) {
	r.printf("### 📊 Top WAL-Generating Queries\n\n")

	if len(queries) == 0 {
		r.printf("*No WAL-generating queries recorded*\n\n")
		r.printf(sectionRule)
		return
	}

	r.printf("*Statements that wrote the most Write-Ahead Log*\n\n")
	for i, q := range queries {
		r.printf("**%d. Query ID:** `%s`\n\n", i+1, q.QueryID)
		r.printf("- **SQL preview:** `%s`\n", inlineCode(q.Preview))
		r.printf("- **Database:** %s\n", q.Database)
		r.printf("- **Calls:** %s\n", format.OptCount(q.Calls))
		r.printf("- **WAL volume:** %s MB", format.Fixed(q.WalMB, 2))
		if q.WalGB > 0 {
			r.printf(" (%s GB)", format.Fixed(q.WalGB, 3))
		}
		if q.WalPct > 0 {
			r.printf(", %s of total WAL", format.Percent(q.WalPct))
		}
		r.printf("\n\n")
	}

	r.printf(sectionRule)
}

func (r *MarkdownReporter) printTopQueries(queries []models.QueryMetrics) {
	r.printf("## 🔥 Top Time-Consuming Queries\n\n")

	if len(queries) == 0 {
		r.printf("%s\n\n", placeholderUnavailable)
		r.printf(sectionRule)
		return
	}

	r.printf("*%d statements with the highest total execution time*\n\n", len(queries))

	for i, q := range queries {
		r.printf("### %d. Query ID: `%s`\n\n", i+1, q.QueryID)
		r.printf("**SQL preview:** `%s`\n\n", inlineCode(q.Preview))

		rows := [][]string{
			{"**Database**", q.Database},
			{"**User**", q.User},
			{"**Calls**", format.OptCount(q.Calls)},
			{"**Total execution time**", optSecondsAsMillis(q.TotalTime)},
			{"**Mean time**", optMillis(q.MeanTime)},
			{"**Rows**", positiveCount(q.Rows)},
			{"**Cache hit ratio**", format.Percent(q.CacheRatio)},
		}
		if tb := q.TempBlocks.Or(0); tb > 0 {
			rows = append(rows, []string{"**Temp blocks written**", format.Count(tb)})
		}
		r.printTable([]string{"Parameter", "Value"}, rows)

		if len(q.Findings) > 0 {
			r.printf("**⚠️ Findings:**\n\n")
			r.printFindings(q.Findings)
		} else {
			r.printf("✅ **Query looks healthy**\n\n")
		}

		if len(q.Recommendations) > 0 {
			r.printf("**💡 Recommendations:**\n\n")
			r.printList(q.Recommendations)
		}

		r.printf(sectionRule)
	}
}

func (r *MarkdownReporter) printProblemTables(tables []models.TableMetrics) {
	r.printf("## 🗂️ Tables Requiring Attention\n\n")

	if len(tables) == 0 {
		r.printf("*No problem tables detected*\n\n")
		r.printf(sectionRule)
		return
	}

	for i, t := range tables {
		r.printf("### %d. `%s`\n\n", i+1, t.QualifiedName())
		r.printTable([]string{"Parameter", "Value"}, [][]string{
			{"**Database**", t.Database},
			{"**Size**", t.Size},
			{"**Live tuples**", format.OptCount(t.LiveTuples)},
			{"**Dead tuples**", format.OptCount(t.DeadTuples)},
			{"**Seq scans**", format.OptCount(t.SeqScan)},
			{"**Index scans**", format.OptCount(t.IdxScan)},
			{"**Modifications since ANALYZE**", format.OptCount(t.ModsSinceAnalyze)},
		})

		r.printf("**⚠️ Findings:**\n\n")
		r.printFindings(t.Findings)

		r.printf("**💡 Recommendations:**\n\n")
		r.printList(t.Recommendations)

		r.printf(sectionRule)
	}
}

func (r *MarkdownReporter) printUnusedIndexes(indexes []models.UnusedIndex) {
	r.printf("## 🔍 Unused Indexes\n\n")

	if len(indexes) == 0 {
		r.printf("*No unused indexes detected*\n\n")
		r.printf(sectionRule)
		return
	}

	r.printf("*Indexes that were not scanned during the monitoring period*\n\n")

	shown := indexes
	if len(shown) > r.opts.MaxUnusedIndexes {
		shown = shown[:r.opts.MaxUnusedIndexes]
	}
	rows := make([][]string, 0, len(shown))
	for _, idx := range shown {
		rows = append(rows, []string{idx.Database, idx.Schema, idx.Table, idx.Index, idx.Size})
	}
	r.printTable([]string{"Database", "Schema", "Table", "Index", "Size"}, rows)
	if len(indexes) > len(shown) {
		r.printf("*%d more not shown*\n\n", len(indexes)-len(shown))
	}

	r.printf("**💡 Recommendation**: consider dropping unused indexes to save space and speed up INSERT/UPDATE operations.\n\n")

	samples := indexes
	if len(samples) > r.opts.DropIndexSamples {
		samples = samples[:r.opts.DropIndexSamples]
	}
	r.printf("```sql\n")
	r.printf("-- Verify index usage before dropping:\n")
	for _, idx := range samples {
		r.printf("%s\n", analyzer.DropIndexStatement(idx))
	}
	r.printf("```\n\n")
	r.printf(sectionRule)
}

func (r *MarkdownReporter) printSummary(s models.Summary) {
	r.printf("## 📋 Summary and Recommendations\n\n")

	r.printf("### ✅ What Works Well\n\n")
	r.printList(s.Healthy)

	r.printf("### ⚠️ Critical Issues\n\n")
	if len(s.Critical) == 0 {
		r.printf("- No critical issues detected ✅\n\n")
	} else {
		r.printList(s.Critical)
	}

	r.printf("### 💡 Optimization Recommendations\n\n")
	for i, rec := range s.Recommendations {
		r.printf("%d. %s\n", i+1, rec.Action)
	}
	r.printf("\n")
	r.printf(sectionRule)
}

func (r *MarkdownReporter) printFooter(a *models.Analysis) {
	r.printf("## 📚 Additional Information\n\n")
	r.printf("**Data source**: `%s`\n\n", a.Source)
	r.printf("**Methodology**: the analysis covers query performance, index usage, table statistics, ")
	r.printf("WAL activity and overall database health.\n\n")
	if a.Summary.HealthScore != "" {
		r.printf("**Health score**: %s (%s)\n\n",
			strings.ToUpper(a.Summary.HealthScore), format.Percent(a.Summary.ScorePercent))
	}
	r.printf("*Report generated automatically at %s*\n", formatTimestamp(a.GeneratedAt))
}

// printTable renders a two-dimensional block with go-pretty's Markdown mode.
func (r *MarkdownReporter) printTable(header []string, rows [][]string) {
	tw := table.NewWriter()
	tw.Style().Format.Header = text.FormatDefault

	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	tw.AppendHeader(hr)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		tw.AppendRow(tr)
	}

	r.printf("%s\n\n", tw.RenderMarkdown())
}

func (r *MarkdownReporter) printFindings(findings []models.Finding) {
	for _, f := range findings {
		r.printf("- %s %s\n", severityIcon(f.Severity), f.Message)
	}
	r.printf("\n")
}

func (r *MarkdownReporter) printList(items []string) {
	for _, item := range items {
		r.printf("- %s\n", item)
	}
	r.printf("\n")
}

// printf writes formatted output and keeps the first write error.
func (r *MarkdownReporter) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.writer, format, args...)
}

func severityIcon(severity string) string {
	switch severity {
	case models.SeverityCritical:
		return "🔴"
	case models.SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// nonZeroCount renders a count, leaving the cell empty for zero or absent.
func nonZeroCount(v models.Optional[int64]) string {
	if !v.Valid || v.Value == 0 {
		return ""
	}
	return format.Count(v.Value)
}

func positiveCount(v models.Optional[int64]) string {
	if !v.Valid || v.Value <= 0 {
		return ""
	}
	return format.Count(v.Value)
}

func optMillis(v models.Optional[float64]) string {
	if !v.Valid {
		return ""
	}
	return format.Millis(v.Value)
}

func optSecondsAsMillis(v models.Optional[float64]) string {
	if !v.Valid {
		return ""
	}
	return format.SecondsAsMillis(v.Value)
}

// inlineCode keeps a preview from closing its surrounding code span.
func inlineCode(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

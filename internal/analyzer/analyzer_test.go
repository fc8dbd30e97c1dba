package analyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/ppiankov/pgreport/internal/workbook"
)

func sampleWorkbook() *workbook.Workbook {
	wb := workbook.New("sample.xlsx")
	wb.Add(workbook.NewTable(workbook.SheetProperties,
		[]string{"report_start1", "report_end1", "interval_duration_sec"},
		[][]string{{"2024-01-01 10:00:00", "2024-01-01 11:00:00", "3600"}}))
	wb.Add(workbook.NewTable(workbook.SheetDBStat,
		[]string{"dbname", "blks_hit_pct", "xact_commit", "xact_rollback", "deadlocks", "temp_files"},
		[][]string{
			{"app", "92.5", "1000", "10", "0", "4"},
			{"billing", "99.5", "500", "0", "0", "2"},
		}))
	wb.Add(workbook.NewTable(workbook.SheetTopStatements,
		[]string{"hexqueryid", "dbname", "username", "calls", "total_exec_time", "mean_exec_time", "wal_bytes"},
		[][]string{
			{"q1", "app", "web", "10", "30", "3000", "1048576"},
			{"q2", "app", "web", "1000", "2", "2", ""},
		}))
	wb.Add(workbook.NewTable(workbook.SheetQueries,
		[]string{"hexqueryid", "query_texts"},
		[][]string{{"q1", "UPDATE orders\n   SET status = $1"}}))
	wb.Add(workbook.NewTable(workbook.SheetTopTables,
		[]string{"dbname", "schemaname", "relname", "n_live_tup", "n_dead_tup"},
		[][]string{{"app", "public", "orders", "1000", "500"}}))
	wb.Add(workbook.NewTable(workbook.SheetTopIndexes,
		[]string{"dbname", "schemaname", "relname", "indexrelname", "idx_scan"},
		[][]string{{"app", "public", "orders", "orders_old_idx", "0"}}))
	return wb
}

func TestAnalyze(t *testing.T) {
	fixed := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	a := New(DefaultOptions()).WithClock(func() time.Time { return fixed })

	result := a.Analyze(sampleWorkbook())

	if !result.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v", result.GeneratedAt)
	}
	if result.Source != "sample.xlsx" {
		t.Errorf("Source = %q", result.Source)
	}
	if result.Period.DurationMinutes != 60 {
		t.Errorf("duration = %d", result.Period.DurationMinutes)
	}
	if len(result.Databases) != 2 {
		t.Errorf("databases = %d", len(result.Databases))
	}
	if len(result.TopQueries) != 2 || result.TopQueries[0].QueryID != "q1" {
		t.Errorf("top queries = %+v", result.TopQueries)
	}
	if result.TopQueries[0].Preview != "UPDATE orders SET status = $1" {
		t.Errorf("preview = %q", result.TopQueries[0].Preview)
	}
	if len(result.WalQueries) != 1 {
		t.Errorf("wal queries = %d", len(result.WalQueries))
	}
	if result.Wal != nil {
		t.Error("no wal_stats sheet should give a nil WAL summary")
	}
	if len(result.ProblemTables) != 1 || len(result.UnusedIndexes) != 1 {
		t.Errorf("tables = %d, indexes = %d", len(result.ProblemTables), len(result.UnusedIndexes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	if result.Summary.IssuesBySeverity[models.SeverityWarning] == 0 {
		t.Errorf("expected warning issues, got %v", result.Summary.IssuesBySeverity)
	}
	if result.Summary.HealthScore == "" || result.Summary.HealthScore == "unknown" {
		t.Errorf("HealthScore = %q", result.Summary.HealthScore)
	}
}

func TestAnalyzeWarnsWithoutTimingColumns(t *testing.T) {
	wb := workbook.New("x.xlsx")
	wb.Add(workbook.NewTable(workbook.SheetTopStatements, []string{"hexqueryid", "calls"}, [][]string{{"q", "1"}}))

	result := New(DefaultOptions()).Analyze(wb)
	if len(result.TopQueries) != 0 {
		t.Errorf("top queries = %d", len(result.TopQueries))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "total_exec_time") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestAnalyzeEmptyWorkbook(t *testing.T) {
	result := New(DefaultOptions()).Analyze(workbook.New("empty.xlsx"))

	if result.Period.Start != "unknown" {
		t.Errorf("Start = %q", result.Period.Start)
	}
	if result.Databases == nil || result.TopQueries == nil || result.UnusedIndexes == nil {
		t.Error("sections should be empty, not nil")
	}
	if len(result.Summary.Healthy) != 1 || !strings.Contains(result.Summary.Healthy[0], "generally stable") {
		t.Errorf("Healthy = %v", result.Summary.Healthy)
	}
	if result.Summary.HealthScore != "unknown" {
		t.Errorf("HealthScore = %q", result.Summary.HealthScore)
	}
}

func TestSummarize(t *testing.T) {
	th := thresholds.Default()
	in := summaryInput{
		databases: []models.DatabaseMetrics{
			{Name: "a", CacheHitPct: models.Some(92.0), Deadlocks: models.Some[int64](0), TempFiles: models.Some[int64](3)},
			{Name: "b", CacheHitPct: models.Some(80.0), Deadlocks: models.Some[int64](2), TempFiles: models.Some[int64](1)},
		},
		queries: []models.QueryMetrics{
			{MeanTime: models.Some(5000.0)},
			{MeanTime: models.Some(10.0)},
		},
		problemTables: 2,
		unusedIndexes: 4,
	}

	s := Summarize(in, th)

	if len(s.Healthy) != 1 || !strings.Contains(s.Healthy[0], "No deadlocks in database `a`") {
		t.Errorf("Healthy = %v", s.Healthy)
	}
	if len(s.Critical) != 2 {
		t.Fatalf("Critical = %v", s.Critical)
	}
	if !strings.Contains(s.Critical[0], "shared_buffers") || !strings.Contains(s.Critical[1], "Deadlocks") {
		t.Errorf("Critical = %v", s.Critical)
	}

	wantOrder := []struct {
		priority string
		fragment string
	}{
		{models.PriorityHigh, "Optimize 1 slow queries"},
		{models.PriorityMedium, "work_mem"},
		{models.PriorityMedium, "shared_buffers"},
		{models.PriorityMedium, "autovacuum"},
		{models.PriorityLow, "Drop 4 unused indexes"},
	}
	if len(s.Recommendations) != len(wantOrder) {
		t.Fatalf("Recommendations = %+v", s.Recommendations)
	}
	for i, w := range wantOrder {
		rec := s.Recommendations[i]
		if rec.Priority != w.priority || !strings.Contains(rec.Action, w.fragment) {
			t.Errorf("recommendation %d = %+v, want %s containing %q", i, rec, w.priority, w.fragment)
		}
	}
}

func TestSummarizeNothingToDo(t *testing.T) {
	s := Summarize(summaryInput{
		databases: []models.DatabaseMetrics{
			{Name: "ok", CacheHitPct: models.Some(99.0), Deadlocks: models.Some[int64](0)},
		},
	}, thresholds.Default())

	if len(s.Critical) != 0 {
		t.Errorf("Critical = %v", s.Critical)
	}
	if len(s.Recommendations) != 1 || !strings.Contains(s.Recommendations[0].Action, "well tuned") {
		t.Errorf("Recommendations = %+v", s.Recommendations)
	}
	if len(s.Healthy) != 2 {
		t.Errorf("Healthy = %v", s.Healthy)
	}
}

func TestFlatten(t *testing.T) {
	result := New(DefaultOptions()).Analyze(sampleWorkbook())

	topics := map[string]int{}
	for _, issue := range result.Issues {
		topics[issue.Topic]++
		if issue.Remedy == "" {
			t.Errorf("issue without remedy: %+v", issue)
		}
	}
	for _, topic := range []string{models.TopicDatabase, models.TopicQuery, models.TopicTable, models.TopicIndex} {
		if topics[topic] == 0 {
			t.Errorf("no %s issues in %v", topic, topics)
		}
	}

	if result.Issues[0].Topic != models.TopicDatabase {
		t.Errorf("issues should follow report order, first = %+v", result.Issues[0])
	}
	last := result.Issues[len(result.Issues)-1]
	if last.Remedy != "DROP INDEX IF EXISTS public.orders_old_idx;" {
		t.Errorf("index remedy = %q", last.Remedy)
	}
}

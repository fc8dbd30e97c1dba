package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/pgreport/internal/analyzer"
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/workbook"
)

var fixedTime = time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)

func analyze(wb *workbook.Workbook) *models.Analysis {
	return analyzer.New(analyzer.DefaultOptions()).
		WithClock(func() time.Time { return fixedTime }).
		Analyze(wb)
}

func sampleAnalysis() *models.Analysis {
	wb := workbook.New("20 RPS.xlsx")
	wb.Add(workbook.NewTable(workbook.SheetProperties,
		[]string{"report_start1", "report_end1", "interval_duration_sec"},
		[][]string{{"2026-02-15 09:00:00", "2026-02-15 10:00:00", "60"}}))
	wb.Add(workbook.NewTable(workbook.SheetDBStat,
		[]string{"dbname", "datsize", "datsize_delta", "blks_hit_pct", "xact_commit", "xact_rollback", "deadlocks", "temp_files", "temp_bytes"},
		[][]string{{"shop", "1200 MB", "+12 MB", "99.5", "123456", "0", "0", "0", "0"}}))
	wb.Add(workbook.NewTable(workbook.SheetTopStatements,
		[]string{"hexqueryid", "dbname", "username", "calls", "rows", "total_exec_time", "mean_exec_time", "shared_blks_hit", "shared_blks_read", "temp_blks_written", "wal_bytes", "wal_bytes_pct"},
		[][]string{
			{"a1b2", "shop", "app", "1500", "3000", "12.3456", "1500.5", "100", "900", "2048", "125829120", "75.5"},
			{"c3d4", "shop", "app", "10", "", "0.5", "5", "0", "0", "0", "", ""},
		}))
	wb.Add(workbook.NewTable(workbook.SheetQueries,
		[]string{"hexqueryid", "query_texts"},
		[][]string{{"a1b2", "SELECT   *\n FROM  orders | WHERE id = $1"}}))
	wb.Add(workbook.NewTable(workbook.SheetWalStats,
		[]string{"wal_records", "wal_fpi", "wal_bytes", "wal_write_time", "wal_sync_time"},
		[][]string{{"100000", "500", "125829120", "12.5", "3.25"}}))
	wb.Add(workbook.NewTable(workbook.SheetTopTables,
		[]string{"dbname", "schemaname", "relname", "relsize", "n_live_tup", "n_dead_tup", "n_mod_since_analyze", "seq_scan", "idx_scan"},
		[][]string{
			{"shop", "public", "orders", "80 MB", "1000", "300", "0", "0", "50"},
			{"shop", "public", "clean", "8 MB", "1000", "100", "0", "0", "50"},
		}))
	wb.Add(workbook.NewTable(workbook.SheetTopIndexes,
		[]string{"dbname", "schemaname", "relname", "indexrelname", "indexrelsize", "idx_scan"},
		[][]string{
			{"shop", "public", "orders", "idx_one", "16 kB", "0"},
			{"shop", "public", "orders", "idx_two", "16 kB", "0"},
			{"shop", "public", "orders", "idx_three", "16 kB", "0"},
			{"shop", "public", "orders", "idx_four", "16 kB", "0"},
			{"shop", "public", "orders", "idx_used", "16 kB", "7"},
		}))
	return analyze(wb)
}

func TestJSONReporterGenerate(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf, false)

	if err := r.Generate(sampleAnalysis()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"source", "period", "databases", "wal", "top_queries", "problem_tables", "unused_indexes", "issues", "summary"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	// absent numeric values encode as null
	if !strings.Contains(buf.String(), `"rows":null`) {
		t.Error("expected a null rows value for the blank cell")
	}
}

func TestJSONReporterPretty(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf, true)

	if err := r.Generate(sampleAnalysis()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"source\": \"20 RPS.xlsx\"") {
		t.Error("expected indented output")
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("expected trailing newline")
	}
}

func TestJSONReporterSummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf, false)

	if err := r.GenerateSummaryOnly(sampleAnalysis()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := decoded["databases"]; ok {
		t.Error("summary-only output should not contain per-entity metrics")
	}
	if decoded["generated_at"] != "2026-02-15T10:00:00Z" {
		t.Errorf("generated_at = %v", decoded["generated_at"])
	}
	if _, ok := decoded["issues"]; !ok {
		t.Error("expected issues")
	}
}

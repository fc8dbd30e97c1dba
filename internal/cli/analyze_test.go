package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/config"
	"github.com/ppiankov/pgreport/internal/storage"
	"github.com/ppiankov/pgreport/internal/workbook"
)

// resetAnalyzeFlags restores the analyze flag variables after the test.
func resetAnalyzeFlags(t *testing.T) {
	t.Helper()
	oldFormat, oldDigest, oldSummary, oldThresholds := analyzeFormat, analyzeDigest, analyzeJSONSummary, analyzeThresholds
	t.Cleanup(func() {
		analyzeFormat, analyzeDigest, analyzeJSONSummary, analyzeThresholds = oldFormat, oldDigest, oldSummary, oldThresholds
	})
	analyzeFormat, analyzeDigest, analyzeJSONSummary, analyzeThresholds = "", false, false, ""
}

func TestRunAnalyzeBatch(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())
	resetAnalyzeFlags(t)
	analyzeFormat = "both"

	dir := t.TempDir()
	input := writeFixture(t, dir, "20 RPS.xlsx", 0)

	cmd, out, errOut := testCommand()
	err := runAnalyze(cmd, []string{
		input,
		filepath.Join(dir, "missing.xlsx"),
		filepath.Join(dir, "*.html"),
	})
	if err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	output := out.String()
	for _, fragment := range []string{
		"Warning: pattern '" + filepath.Join(dir, "*.html") + "' matched no files",
		"Found 2 files to process",
		"Processing file: 20 RPS.xlsx",
		"✓ dbstat: 1 rows",
		"Report saved to ReportDB_20 RPS.md",
		"Created: ReportDB_20 RPS.json",
		"Error processing missing.xlsx",
		"✓ Processed successfully: 1",
		"✗ Failed: 1",
	} {
		if !strings.Contains(output, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, output)
		}
	}
	if !strings.Contains(errOut.String(), "file not found") {
		t.Errorf("expected error trace on stderr, got %q", errOut.String())
	}

	md, err := os.ReadFile(filepath.Join(dir, "ReportDB_20 RPS.md"))
	if err != nil {
		t.Fatalf("markdown report not written: %v", err)
	}
	for _, fragment := range []string{
		"# 📊 PostgreSQL Performance Analysis",
		"DROP INDEX IF EXISTS public.idx_one;",
		"VACUUM ANALYZE public.orders;",
		"20 RPS.xlsx",
	} {
		if !strings.Contains(string(md), fragment) {
			t.Errorf("expected report to contain %q", fragment)
		}
	}

	a, err := storage.NewLocal(dir).LoadAnalysis("ReportDB_20 RPS.json")
	if err != nil {
		t.Fatalf("json analysis not readable: %v", err)
	}
	if a.Source != "20 RPS.xlsx" || len(a.Issues) == 0 || len(a.UnusedIndexes) != 1 {
		t.Errorf("unexpected analysis: source %q, %d issues, %d unused indexes", a.Source, len(a.Issues), len(a.UnusedIndexes))
	}
}

func TestRunAnalyzeDefaultFileAndDigest(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())
	resetAnalyzeFlags(t)
	analyzeDigest = true

	dir := t.TempDir()
	writeFixture(t, dir, "20 RPS.xlsx", 0)
	old := defaultInputDir
	defaultInputDir = dir
	t.Cleanup(func() { defaultInputDir = old })

	cmd, out, _ := testCommand()
	if err := runAnalyze(cmd, nil); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	output := out.String()
	for _, fragment := range []string{"Found 1 files to process", "Unused indexes: 1", "✓ Processed successfully: 1"} {
		if !strings.Contains(output, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, output)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "ReportDB_20 RPS.json")); !os.IsNotExist(err) {
		t.Error("json output should not be written in markdown format")
	}
}

func TestRunAnalyzePartialWorkbook(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())
	resetAnalyzeFlags(t)

	dir := t.TempDir()
	input := writeFixture(t, dir, "props.xlsx", 1)

	cmd, out, _ := testCommand()
	if err := runAnalyze(cmd, []string{input}); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Processed successfully: 1") {
		t.Errorf("a workbook with only Properties should still be analyzed\n%s", out.String())
	}

	md, err := os.ReadFile(filepath.Join(dir, "ReportDB_props.md"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(md), "NaN") {
		t.Error("report must not contain NaN")
	}
}

func TestRunAnalyzeUnreadableSheet(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())
	resetAnalyzeFlags(t)

	dir := t.TempDir()
	input := writeFixture(t, dir, "20 RPS.xlsx", 0)

	orig := loadWorkbook
	t.Cleanup(func() { loadWorkbook = orig })
	loadWorkbook = func(path string) (*workbook.Workbook, error) {
		full, err := orig(path)
		if err != nil {
			return nil, err
		}
		wb := workbook.New(full.Name)
		for _, name := range full.Order {
			if name != workbook.SheetTopIndexes {
				wb.Add(full.Sheet(name))
			}
		}
		wb.Errors = append(wb.Errors, &workbook.SheetError{
			Sheet: workbook.SheetTopIndexes,
			Err:   errors.New("read rows: bad sheet xml"),
		})
		return wb, nil
	}

	cmd, out, _ := testCommand()
	if err := runAnalyze(cmd, []string{input}); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	output := out.String()
	for _, fragment := range []string{
		"✓ dbstat: 1 rows",
		"Error loading sheet top_indexes: read rows: bad sheet xml",
		"Report saved to ReportDB_20 RPS.md",
		"✓ Processed successfully: 1",
	} {
		if !strings.Contains(output, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, output)
		}
	}

	md, err := os.ReadFile(filepath.Join(dir, "ReportDB_20 RPS.md"))
	if err != nil {
		t.Fatalf("report should still be written: %v", err)
	}
	if !strings.Contains(string(md), "VACUUM ANALYZE public.orders;") {
		t.Error("sections from readable sheets should still be rendered")
	}
	if strings.Contains(string(md), "DROP INDEX IF EXISTS") {
		t.Error("unused indexes come from the unreadable sheet and must be absent")
	}
}

func TestRunAnalyzeInvalidInputs(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())
	resetAnalyzeFlags(t)

	analyzeFormat = "xml"
	cmd, _, _ := testCommand()
	err := runAnalyze(cmd, []string{"a.xlsx"})
	if code := HandleError(err); code != ExitInvalidInput {
		t.Errorf("bad format: exit %d (%v)", code, err)
	}

	analyzeFormat = ""
	analyzeThresholds = filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(analyzeThresholds, []byte("thresholds: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := runAnalyze(cmd, []string{"a.xlsx"}); err == nil {
		t.Error("expected malformed thresholds file to fail")
	}
}

func TestRunAnalyzeJSONSummary(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())
	resetAnalyzeFlags(t)
	analyzeFormat = "json"
	analyzeJSONSummary = true

	dir := t.TempDir()
	input := writeFixture(t, dir, "20 RPS.xlsx", 0)

	cmd, _, _ := testCommand()
	if err := runAnalyze(cmd, []string{input}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ReportDB_20 RPS.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"issues"`) || strings.Contains(string(data), `"databases"`) {
		t.Errorf("unexpected summary-only document:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "ReportDB_20 RPS.md")); !os.IsNotExist(err) {
		t.Error("markdown should not be written in json format")
	}
}

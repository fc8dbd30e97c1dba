package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Banner("Processing file: 20 RPS.xlsx")
	p.Success("Report saved: %s", "ReportDB_20 RPS.md")
	p.Failure("Error processing %s", "x.xlsx")
	p.Warning("pattern '%s' matched no files", "*.xls")
	p.Detail("sheet %s skipped", "dbstat")

	out := buf.String()
	for _, fragment := range []string{
		strings.Repeat("=", 70) + "\nProcessing file: 20 RPS.xlsx\n" + strings.Repeat("=", 70),
		"✓ Report saved: ReportDB_20 RPS.md",
		"✗ Error processing x.xlsx",
		"⚠️ pattern '*.xls' matched no files",
		"  sheet dbstat skipped",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal output must not contain escape codes")
	}
}

func TestTally(t *testing.T) {
	tests := []struct {
		name      string
		ok        int
		failed    int
		skipped   int
		want      []string
		forbidden []string
	}{
		{"all good", 3, 0, 0, []string{"✓ Processed successfully: 3"}, []string{"Failed", "Skipped"}},
		{"with failures", 1, 2, 0, []string{"✓ Processed successfully: 1", "✗ Failed: 2"}, []string{"Skipped"}},
		{"cancelled", 1, 0, 4, []string{"Skipped: 4"}, []string{"Failed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPlain(&buf).Tally(tt.ok, tt.failed, tt.skipped)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in\n%s", w, out)
				}
			}
			for _, f := range tt.forbidden {
				if strings.Contains(out, f) {
					t.Errorf("unexpected %q in\n%s", f, out)
				}
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

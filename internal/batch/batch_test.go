package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "20 RPS.xlsx", "40 RPS.xlsx", "notes.txt")

	res := Resolve([]string{
		filepath.Join(dir, "*.xlsx"),
		filepath.Join(dir, "missing.xlsx"),
		filepath.Join(dir, "*.html"),
		filepath.Join(dir, "?0 RPS.xlsx"),
	}, Config{})

	want := []string{
		filepath.Join(dir, "20 RPS.xlsx"),
		filepath.Join(dir, "40 RPS.xlsx"),
		filepath.Join(dir, "missing.xlsx"),
		filepath.Join(dir, "20 RPS.xlsx"),
		filepath.Join(dir, "40 RPS.xlsx"),
	}
	if !reflect.DeepEqual(res.Files, want) {
		t.Errorf("Files = %v", res.Files)
	}
	if len(res.Unmatched) != 1 || !strings.HasSuffix(res.Unmatched[0], "*.html") {
		t.Errorf("Unmatched = %v", res.Unmatched)
	}
}

func TestResolveDefault(t *testing.T) {
	res := Resolve(nil, Config{DefaultFile: "20 RPS.xlsx", DefaultDir: "/opt/pgreport"})
	if len(res.Files) != 1 || res.Files[0] != filepath.Join("/opt/pgreport", "20 RPS.xlsx") {
		t.Errorf("Files = %v", res.Files)
	}

	path := DefaultPath(Config{DefaultFile: "20 RPS.html"})
	if filepath.Base(path) != "20 RPS.html" || !filepath.IsAbs(path) {
		t.Errorf("DefaultPath = %q", path)
	}
}

func TestIsPattern(t *testing.T) {
	tests := map[string]bool{
		"*.xlsx":      true,
		"report?.xls": true,
		"a.xlsx":      false,
		"C:/r/a.html": false,
	}
	for in, want := range tests {
		if got := IsPattern(in); got != want {
			t.Errorf("IsPattern(%q) = %v", in, got)
		}
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	var started, done []string
	process := func(ctx context.Context, path string) error {
		switch path {
		case "bad":
			return errors.New("broken workbook")
		case "panics":
			panic("nil sheet")
		}
		return nil
	}

	summary := Run(context.Background(), []string{"a", "bad", "panics", "b"}, process, Hooks{
		Start: func(path string, index, total int) {
			if total != 4 {
				t.Errorf("total = %d", total)
			}
			started = append(started, path)
		},
		Done: func(r FileResult) { done = append(done, r.Path) },
	})

	if summary.Succeeded != 2 || summary.Failed != 2 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !reflect.DeepEqual(started, []string{"a", "bad", "panics", "b"}) || !reflect.DeepEqual(done, started) {
		t.Errorf("started = %v, done = %v", started, done)
	}
	if summary.Results[1].OK() || !strings.Contains(summary.Results[1].Err.Error(), "broken workbook") {
		t.Errorf("result[1] = %+v", summary.Results[1])
	}
	if !strings.Contains(summary.Results[2].Err.Error(), "panic while processing panics: nil sheet") {
		t.Errorf("result[2] = %+v", summary.Results[2])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	summary := Run(ctx, []string{"a", "b", "c"}, func(ctx context.Context, path string) error {
		calls++
		cancel()
		return nil
	}, Hooks{})

	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
	if summary.Succeeded != 1 || summary.Skipped != 2 {
		t.Errorf("summary = %+v", summary)
	}
}

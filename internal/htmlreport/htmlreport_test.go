package htmlreport

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestScanObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"braces inside strings", `{"a":"{}","b":1}</script><p>}</p>`, `{"a":"{}","b":1}`},
		{"nested", `  {"a":{"b":{"c":[1,{"d":2}]}}};`, `{"a":{"b":{"c":[1,{"d":2}]}}}`},
		{"escaped quote", `{"a":"say \"}\" twice"} tail`, `{"a":"say \"}\" twice"}`},
		{"escaped backslash", `{"a":"c:\\","b":"}"}x`, `{"a":"c:\\","b":"}"}`},
		{"leading text", `= window.x || {"k":"v"}`, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanObject(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanObjectUnterminated(t *testing.T) {
	for _, input := range []string{`{"a":1`, `{"a":"}`, `no object`} {
		if _, err := ScanObject(input); !errors.Is(err, ErrUnterminatedObject) {
			t.Errorf("%q: expected ErrUnterminatedObject, got %v", input, err)
		}
	}
}

func TestFindPayload(t *testing.T) {
	page := `<html><script>const data={"a":"{}","b":1}; render(data);</script></html>`
	got, err := FindPayload(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a":"{}","b":1}` {
		t.Errorf("got %q", got)
	}

	_, err = FindPayload("<html></html>")
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("expected ErrMarkerNotFound, got %v", err)
	}
}

const samplePage = `<!DOCTYPE html>
<html><body>
<script>
const data={
  "properties": {"report_start1": "2026-02-15 09:00:00", "server": {"version": "16.2", "host": "db1"}},
  "datasets": {
    "dbstat": [
      {"dbname": "shop", "xact_commit": 123456, "blks_hit_pct": 99.5, "tags": ["a", "b"]},
      {"dbname": "crm", "xact_commit": 10, "extra": null, "archived": true}
    ],
    "empty_set": [],
    "not_a_list": {"x": 1},
    "broken": [1, 2],
    "a_dataset_name_that_is_longer_than_thirty_one_chars": [{"v": "{not a brace}"}]
  },
  "sections": [{"id": "s1", "meta": {"title": "Overview"}}, {"id": "s2"}]
};
</script>
</body></html>`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.DatasetCount != 5 {
		t.Errorf("DatasetCount = %d", p.DatasetCount)
	}

	if p.Properties == nil {
		t.Fatal("expected properties")
	}
	wantProps := []string{"report_start1", "server.version", "server.host"}
	if !reflect.DeepEqual(p.Properties.Columns, wantProps) {
		t.Errorf("properties columns = %v", p.Properties.Columns)
	}

	names := make([]string, 0, len(p.Datasets))
	for _, ds := range p.Datasets {
		names = append(names, ds.Name)
	}
	wantNames := []string{"dbstat", "a_dataset_name_that_is_longer_than_thirty_one_chars"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("datasets = %v", names)
	}

	db := p.Datasets[0]
	wantCols := []string{"dbname", "xact_commit", "blks_hit_pct", "tags", "extra", "archived"}
	if !reflect.DeepEqual(db.Columns, wantCols) {
		t.Errorf("columns = %v", db.Columns)
	}
	wantFirst := []interface{}{"shop", int64(123456), 99.5, `["a","b"]`, nil, nil}
	if !reflect.DeepEqual(db.Rows[0], wantFirst) {
		t.Errorf("row 0 = %#v", db.Rows[0])
	}
	wantSecond := []interface{}{"crm", int64(10), nil, nil, nil, true}
	if !reflect.DeepEqual(db.Rows[1], wantSecond) {
		t.Errorf("row 1 = %#v", db.Rows[1])
	}

	if len(p.Errors) != 1 || p.Errors[0].Name != "broken" {
		t.Fatalf("errors = %v", p.Errors)
	}
	if !strings.Contains(p.Errors[0].Error(), "not an object") {
		t.Errorf("error = %v", p.Errors[0])
	}

	if p.Sections == nil {
		t.Fatal("expected sections")
	}
	if !reflect.DeepEqual(p.Sections.Columns, []string{"id", "meta.title"}) {
		t.Errorf("sections columns = %v", p.Sections.Columns)
	}
	if len(p.Sections.Rows) != 2 || p.Sections.Rows[1][1] != nil {
		t.Errorf("sections rows = %v", p.Sections.Rows)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("<html>no payload</html>")); !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("expected ErrMarkerNotFound, got %v", err)
	}

	_, err := Parse([]byte(`const data={"a":1,,"b":2};`))
	if err == nil || !strings.Contains(err.Error(), "parse payload JSON") {
		t.Errorf("expected JSON error, got %v", err)
	}
}

func TestParseWithoutOptionalKeys(t *testing.T) {
	p, err := Parse([]byte(`const data={"datasets":{"x":[{"a":1}]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Properties != nil || p.Sections != nil {
		t.Error("absent keys should yield nil datasets")
	}
	if len(p.Datasets) != 1 {
		t.Errorf("datasets = %d", len(p.Datasets))
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20 RPS.html")
	if err := os.WriteFile(path, []byte(samplePage), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Datasets) != 2 {
		t.Errorf("datasets = %d", len(p.Datasets))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

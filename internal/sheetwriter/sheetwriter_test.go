package sheetwriter

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/pgreport/internal/htmlreport"
	"github.com/xuri/excelize/v2"
)

const page = `<script>const data={
  "properties": {"report_start1": "2026-02-15 09:00:00", "server": {"version": "16.2"}},
  "datasets": {
    "dbstat": [
      {"dbname": "shop", "xact_commit": 123456, "blks_hit_pct": 99.5},
      {"dbname": "crm", "xact_commit": 10, "archived": true}
    ],
    "a_dataset_name_that_is_longer_than_thirty_one_chars": [{"v": 1}],
    "a_dataset_name_that_is_longer_than_thirty_one_chars_too": [{"v": 2}],
    "wide": [{"text": "` + "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx" + `"}]
  },
  "sections": [{"id": "s1"}]
}</script>`

func build(t *testing.T) (*excelize.File, *Result) {
	t.Helper()
	p, err := htmlreport.Parse([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	result, err := New(DefaultOptions()).Write(p, &buf)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f, result
}

func TestWriteSheetOrder(t *testing.T) {
	f, result := build(t)

	want := []string{"Properties", "dbstat", "a_dataset_name_that_is_longer_t", "wide", "Sections"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	if len(result.Sheets) != len(want) {
		t.Errorf("result sheets = %+v", result.Sheets)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Error(), "already used") {
		t.Errorf("errors = %v", result.Errors)
	}
}

func TestWriteCells(t *testing.T) {
	f, _ := build(t)

	cells := []struct {
		sheet string
		cell  string
		want  string
	}{
		{"Properties", "B1", "server.version"},
		{"Properties", "B2", "16.2"},
		{"dbstat", "A1", "dbname"},
		{"dbstat", "D1", "archived"},
		{"dbstat", "B2", "123456"},
		{"dbstat", "C2", "99.5"},
		{"dbstat", "C3", ""},
		{"dbstat", "D3", "TRUE"},
		{"Sections", "A2", "s1"},
	}
	for _, c := range cells {
		got, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("%s!%s: %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}
}

func TestWriteFormatting(t *testing.T) {
	f, _ := build(t)

	header, err := f.GetCellStyle("dbstat", "A1")
	if err != nil {
		t.Fatal(err)
	}
	body, err := f.GetCellStyle("dbstat", "D3")
	if err != nil {
		t.Fatal(err)
	}
	if header == 0 || body == 0 || header == body {
		t.Errorf("header style %d, body style %d", header, body)
	}

	style, err := f.GetStyle(header)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header should be bold")
	}

	width, err := f.GetColWidth("dbstat", "B")
	if err != nil {
		t.Fatal(err)
	}
	if width != float64(len("xact_commit")+2) {
		t.Errorf("width = %v", width)
	}

	wide, err := f.GetColWidth("wide", "A")
	if err != nil {
		t.Fatal(err)
	}
	if wide != 50 {
		t.Errorf("capped width = %v", wide)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dbstat", "dbstat"},
		{strings.Repeat("a", 31), strings.Repeat("a", 31)},
		{strings.Repeat("b", 40), strings.Repeat("b", 31)},
		{strings.Repeat("я", 35), strings.Repeat("я", 31)},
	}
	for _, tt := range tests {
		if got := SheetName(tt.in); got != tt.want {
			t.Errorf("SheetName(%q) = %q", tt.in, got)
		}
	}
}

func TestColumnWidths(t *testing.T) {
	ds := &htmlreport.Dataset{
		Columns: []string{"id", "name", "flag"},
		Rows: [][]interface{}{
			{int64(12345678), "short", nil},
			{1.5, strings.Repeat("n", 60), false},
		},
	}
	got := ColumnWidths(ds, 50)
	want := []int{10, 50, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("widths = %v, want %v", got, want)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{int64(-3), "-3"},
		{0.25, "0.25"},
		{true, "TRUE"},
	}
	for _, tt := range tests {
		if got := Render(tt.in); got != tt.want {
			t.Errorf("Render(%v) = %q", tt.in, got)
		}
	}
}

func TestBuildEmptyPayload(t *testing.T) {
	f, result, err := New(DefaultOptions()).Build(&htmlreport.Payload{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if len(result.Sheets) != 0 {
		t.Errorf("sheets = %+v", result.Sheets)
	}
	if got := f.GetSheetList(); len(got) != 1 {
		t.Errorf("a workbook keeps at least one sheet, got %v", got)
	}
}

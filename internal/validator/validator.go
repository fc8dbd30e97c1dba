package validator

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pgreport/internal/workbook"
	"github.com/scylladb/go-set/strset"
)

// SheetSpec lists the columns the analyzer reads from one sheet. When
// Alternatives is set, at least one group must be fully present.
type SheetSpec struct {
	Name         string
	Columns      []string
	Alternatives [][]string
}

// Expected is the workbook layout the analyzer understands.
var Expected = []SheetSpec{
	{
		Name:    workbook.SheetProperties,
		Columns: []string{"report_start1", "report_end1", "interval_duration_sec"},
	},
	{
		Name: workbook.SheetDBStat,
		Columns: []string{"dbname", "datsize", "datsize_delta", "blks_hit_pct", "xact_commit",
			"xact_rollback", "deadlocks", "temp_files", "temp_bytes"},
	},
	{
		Name: workbook.SheetTopStatements,
		Columns: []string{"hexqueryid", "dbname", "username", "calls", "rows", "shared_blks_hit",
			"shared_blks_read", "temp_blks_written", "wal_bytes", "wal_bytes_pct"},
		Alternatives: [][]string{
			{"total_exec_time", "mean_exec_time"},
			{"total_time", "mean_time"},
		},
	},
	{
		Name:    workbook.SheetQueries,
		Columns: []string{"hexqueryid", "query_texts"},
	},
	{
		Name:    workbook.SheetWalStats,
		Columns: []string{"wal_records", "wal_fpi", "wal_bytes", "wal_write_time", "wal_sync_time"},
	},
	{
		Name: workbook.SheetTopTables,
		Columns: []string{"dbname", "schemaname", "relname", "relsize", "n_live_tup", "n_dead_tup",
			"n_mod_since_analyze", "seq_scan", "idx_scan"},
	},
	{
		Name:    workbook.SheetTopIndexes,
		Columns: []string{"dbname", "schemaname", "relname", "indexrelname", "indexrelsize", "idx_scan"},
	},
}

// SheetResult describes one expected sheet in a workbook.
type SheetResult struct {
	Name           string
	Present        bool
	Rows           int
	MissingColumns []string
	TimingColumns  string // matched alternative group, empty when none
	LoadError      error
}

// OK reports whether the sheet is present and complete.
func (r SheetResult) OK() bool {
	return r.Present && r.LoadError == nil && len(r.MissingColumns) == 0
}

// Result is the validation outcome for a workbook.
type Result struct {
	Source      string
	Sheets      []SheetResult
	ExtraSheets []string
}

// Valid reports whether every expected sheet is present and complete.
func (r *Result) Valid() bool {
	for _, s := range r.Sheets {
		if !s.OK() {
			return false
		}
	}
	return true
}

// Problems returns one line per missing sheet, unreadable sheet or missing
// column group.
func (r *Result) Problems() []string {
	var problems []string
	for _, s := range r.Sheets {
		switch {
		case s.LoadError != nil:
			problems = append(problems, fmt.Sprintf("Sheet '%s' could not be read: %v", s.Name, s.LoadError))
		case !s.Present:
			problems = append(problems, fmt.Sprintf("Missing sheet: '%s'", s.Name))
		case len(s.MissingColumns) > 0:
			problems = append(problems, fmt.Sprintf("Sheet '%s' is missing columns: %s",
				s.Name, strings.Join(s.MissingColumns, ", ")))
		}
	}
	return problems
}

// ValidationError represents a workbook that does not match the expected layout
type ValidationError struct {
	Source string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid workbook %s:\n  - %s", e.Source, strings.Join(e.Errors, "\n  - "))
}

// Validator checks workbooks against the expected sheet layout
type Validator struct {
	specs []SheetSpec
}

// New creates a new validator for the standard layout
func New() *Validator {
	return &Validator{specs: Expected}
}

// Check inspects every expected sheet. Absent sheets and columns are
// reported, not treated as errors; the analyzer degrades to defaults.
func (v *Validator) Check(wb *workbook.Workbook) *Result {
	result := &Result{Source: wb.Name}

	loadErrors := map[string]error{}
	for _, e := range wb.Errors {
		loadErrors[e.Sheet] = e.Err
	}

	expected := strset.New()
	for _, want := range v.specs {
		expected.Add(want.Name)
		result.Sheets = append(result.Sheets, checkSheet(wb, want, loadErrors[want.Name]))
	}

	for _, name := range wb.Order {
		if !expected.Has(name) {
			result.ExtraSheets = append(result.ExtraSheets, name)
		}
	}
	return result
}

// Validate returns a ValidationError when the workbook is incomplete.
func (v *Validator) Validate(wb *workbook.Workbook) error {
	result := v.Check(wb)
	if result.Valid() {
		return nil
	}
	return &ValidationError{Source: wb.Name, Errors: result.Problems()}
}

func checkSheet(wb *workbook.Workbook, want SheetSpec, loadErr error) SheetResult {
	sr := SheetResult{Name: want.Name, Present: wb.HasSheet(want.Name), LoadError: loadErr}
	if !sr.Present {
		return sr
	}

	t := wb.Sheet(want.Name)
	sr.Rows = t.Len()
	have := strset.New(t.Columns...)

	for _, col := range want.Columns {
		if !have.Has(col) {
			sr.MissingColumns = append(sr.MissingColumns, col)
		}
	}

	if len(want.Alternatives) > 0 {
		for _, group := range want.Alternatives {
			if have.Has(group...) {
				sr.TimingColumns = strings.Join(group, "/")
				break
			}
		}
		if sr.TimingColumns == "" {
			sr.MissingColumns = append(sr.MissingColumns, strings.Join(want.Alternatives[0], "/"))
		}
	}
	return sr
}

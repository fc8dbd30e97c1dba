package workbook

import (
	"strconv"

	"github.com/ppiankov/pgreport/internal/models"
)

// Table is an ordered set of rows sharing one column set.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
	index   map[string]int
}

// Row maps column names to typed cells. Every column of the table is present,
// blank cells carry KindMissing.
type Row struct {
	cells map[string]Value
}

// NewTable builds a table from a header and raw data rows. Short rows are
// padded with missing cells; rows with no data are skipped.
func NewTable(name string, header []string, data [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: normalizeHeader(header),
		index:   make(map[string]int),
	}
	for i, c := range t.Columns {
		t.index[c] = i
	}

	for _, raw := range data {
		if isBlankRow(raw) {
			continue
		}
		row := Row{cells: make(map[string]Value, len(t.Columns))}
		for i, col := range t.Columns {
			cell := ""
			if i < len(raw) {
				cell = raw[i]
			}
			row.cells[col] = ParseValue(cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Empty returns a table with no columns and no rows.
func Empty(name string) *Table {
	return &Table{Name: name, index: map[string]int{}}
}

// HasColumn reports whether the table exposes a column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// First returns the first data row.
func (t *Table) First() (Row, bool) {
	if len(t.Rows) == 0 {
		return Row{}, false
	}
	return t.Rows[0], true
}

// Has reports whether the row's table exposes a column.
func (r Row) Has(col string) bool {
	_, ok := r.cells[col]
	return ok
}

// Value returns the cell for a column; absent columns are missing.
func (r Row) Value(col string) Value {
	v, ok := r.cells[col]
	if !ok {
		return Value{Kind: KindMissing}
	}
	return v
}

// Text returns the trimmed cell text, absent when blank or missing.
func (r Row) Text(col string) models.Optional[string] {
	v := r.Value(col)
	if v.IsMissing() {
		return models.None[string]()
	}
	return models.Some(v.Text())
}

// Int returns the cell as an integer. Floats are truncated; non-numeric
// cells and floats beyond the int64 range are absent.
func (r Row) Int(col string) models.Optional[int64] {
	v := r.Value(col)
	switch v.Kind {
	case KindInt, KindFloat:
		if !v.IntOK {
			return models.None[int64]()
		}
		return models.Some(v.Int)
	case KindBool:
		if v.Bool {
			return models.Some[int64](1)
		}
		return models.Some[int64](0)
	}
	return models.None[int64]()
}

// Float returns the cell as a float; non-numeric cells are absent.
func (r Row) Float(col string) models.Optional[float64] {
	v := r.Value(col)
	if v.IsNumeric() {
		return models.Some(v.Float)
	}
	return models.None[float64]()
}

func normalizeHeader(header []string) []string {
	cols := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int, len(header))
	for i, h := range header {
		name := ParseValue(h).Text()
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if used[name] {
			base := name
			for n := suffix[base] + 1; ; n++ {
				name = base + "." + strconv.Itoa(n)
				if !used[name] {
					suffix[base] = n
					break
				}
			}
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if ParseValue(c).Kind != KindMissing {
			return false
		}
	}
	return true
}

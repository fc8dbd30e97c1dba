package workbook

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Expected sheet names of a monitoring export
const (
	SheetProperties    = "Properties"
	SheetDBStat        = "dbstat"
	SheetTopStatements = "top_statements"
	SheetQueries       = "queries"
	SheetWalStats      = "wal_stats"
	SheetTopTables     = "top_tables"
	SheetTopIndexes    = "top_indexes"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = stderrors.New("file not found")

// ErrInvalidFormat indicates the input file is not a readable xlsx workbook.
var ErrInvalidFormat = stderrors.New("invalid xlsx format")

// SheetError records a sheet that could not be materialized.
type SheetError struct {
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// Workbook maps sheet names to tables.
type Workbook struct {
	Name   string
	Path   string
	Order  []string
	Errors []*SheetError
	sheets map[string]*Table
}

// New creates an empty workbook.
func New(name string) *Workbook {
	return &Workbook{Name: name, sheets: make(map[string]*Table)}
}

// Add stores a table, replacing any sheet of the same name.
func (w *Workbook) Add(t *Table) {
	if _, ok := w.sheets[t.Name]; !ok {
		w.Order = append(w.Order, t.Name)
	}
	w.sheets[t.Name] = t
}

// Sheet returns a table by name. A missing sheet yields an empty table.
func (w *Workbook) Sheet(name string) *Table {
	if t, ok := w.sheets[name]; ok {
		return t
	}
	return Empty(name)
}

// HasSheet reports whether a sheet was loaded.
func (w *Workbook) HasSheet(name string) bool {
	_, ok := w.sheets[name]
	return ok
}

// Load opens a workbook and materializes every sheet. Sheets that fail to
// load are recorded in Errors and left out.
func Load(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrFileNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFormat, "open %s: %v", path, err)
	}
	defer f.Close()

	wb := New(filepath.Base(path))
	wb.Path = path

	for _, sheetName := range f.GetSheetList() {
		t, err := loadSheet(f, sheetName)
		if err != nil {
			serr := &SheetError{Sheet: sheetName, Err: err}
			wb.Errors = append(wb.Errors, serr)
			zap.L().Warn("skip unreadable sheet",
				zap.String("file", wb.Name),
				zap.String("sheet", sheetName),
				zap.Error(err))
			continue
		}
		wb.Add(t)
		zap.L().Debug("loaded sheet",
			zap.String("file", wb.Name),
			zap.String("sheet", sheetName),
			zap.Int("columns", len(t.Columns)),
			zap.Int("rows", t.Len()))
	}

	return wb, nil
}

// readRows returns the raw cell values of a sheet.
var readRows = func(f *excelize.File, sheetName string) ([][]string, error) {
	return f.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

func loadSheet(f *excelize.File, sheetName string) (t *Table, err error) {
	// excelize can panic on malformed sheet XML
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("read rows: %v", r)
		}
	}()

	rows, err := readRows(f, sheetName)
	if err != nil {
		return nil, errors.Wrap(err, "read rows")
	}
	dateCells(f, sheetName, rows)

	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return Empty(sheetName), nil
	}

	return NewTable(sheetName, rows[headerIdx], rows[headerIdx+1:]), nil
}

// dateCells rewrites numeric cells carrying a date or time number format as
// timestamp text. Raw values hold the Excel serial number otherwise.
func dateCells(f *excelize.File, sheetName string, rows [][]string) {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	dateStyle := make(map[int]bool)
	for r, row := range rows {
		for c, raw := range row {
			v := ParseValue(raw)
			if !v.IsNumeric() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			idx, err := f.GetCellStyle(sheetName, cell)
			if err != nil || idx == 0 {
				continue
			}
			isDate, ok := dateStyle[idx]
			if !ok {
				isDate = styleIsDate(f, idx)
				dateStyle[idx] = isDate
			}
			if !isDate {
				continue
			}
			t, err := excelize.ExcelDateToTime(v.Float, date1904)
			if err != nil {
				continue
			}
			row[c] = formatCellTime(t.Round(time.Millisecond), v.Float)
		}
	}
}

func styleIsDate(f *excelize.File, idx int) bool {
	style, err := f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

// isBuiltinDateFormat reports whether a built-in number format id renders
// a date or time.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom format code holds date or time
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormat(code string) bool {
	var plain strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			plain.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(plain.String()), "ydhs")
}

func formatCellTime(t time.Time, serial float64) string {
	if serial < 1 {
		return t.Format("15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.999")
}

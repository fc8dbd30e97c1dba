// Package sheetwriter writes flattened HTML report datasets into a formatted
// Excel workbook.
package sheetwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/ppiankov/pgreport/internal/htmlreport"
	"github.com/scylladb/go-set/strset"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// MaxSheetNameLength is the Excel limit on sheet names.
	MaxSheetNameLength = 31
	defaultSheet       = "Sheet1"
)

// Options controls sheet formatting.
type Options struct {
	HeaderColor    string
	RowColor       string
	AutoFilter     bool
	AutoFit        bool
	MaxColumnWidth int
}

// DefaultOptions returns light green headers over a pale body fill.
func DefaultOptions() Options {
	return Options{
		HeaderColor:    "90EE90",
		RowColor:       "F0FFF0",
		AutoFilter:     true,
		AutoFit:        true,
		MaxColumnWidth: 50,
	}
}

// SheetInfo describes one written sheet.
type SheetInfo struct {
	Name    string
	Dataset string
	Rows    int
	Columns int
}

// Result lists what a Write produced.
type Result struct {
	Sheets []SheetInfo
	Errors []*htmlreport.DatasetError
}

// Writer renders payloads as workbooks.
type Writer struct {
	opts Options
}

// New creates a writer with the given formatting.
func New(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Write renders p as an .xlsx document into out. Sheets come in the order
// Properties, datasets, Sections. A dataset whose sheet cannot be written is
// reported in Result.Errors and the rest of the workbook is still produced.
func (w *Writer) Write(p *htmlreport.Payload, out io.Writer) (*Result, error) {
	f, result, err := w.Build(p)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			zap.L().Debug("close workbook", zap.Error(cerr))
		}
	}()

	if err := f.Write(out); err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return result, nil
}

// Build assembles the workbook in memory.
func (w *Writer) Build(p *htmlreport.Payload) (*excelize.File, *Result, error) {
	f := excelize.NewFile()
	headerStyle, bodyStyle, err := w.styles(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	result := &Result{Errors: append([]*htmlreport.DatasetError(nil), p.Errors...)}
	used := strset.New()
	keepDefault := false

	var datasets []*htmlreport.Dataset
	if p.Properties != nil {
		datasets = append(datasets, p.Properties)
	}
	datasets = append(datasets, p.Datasets...)
	if p.Sections != nil {
		datasets = append(datasets, p.Sections)
	}

	for _, ds := range datasets {
		name := SheetName(ds.Name)
		key := strings.ToLower(name)
		if used.Has(key) {
			result.addError(ds.Name, errors.Errorf("sheet name %q already used", name))
			continue
		}

		isDefault := strings.EqualFold(name, defaultSheet)
		if isDefault {
			err = f.SetSheetName(defaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err == nil {
			err = w.writeSheet(f, name, ds, headerStyle, bodyStyle)
		}
		if err != nil {
			if !isDefault {
				_ = f.DeleteSheet(name)
			}
			result.addError(ds.Name, err)
			continue
		}

		used.Add(key)
		keepDefault = keepDefault || isDefault
		result.Sheets = append(result.Sheets, SheetInfo{
			Name:    name,
			Dataset: ds.Name,
			Rows:    len(ds.Rows),
			Columns: len(ds.Columns),
		})
	}

	if len(result.Sheets) > 0 && !keepDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			_ = f.Close()
			return nil, nil, errors.Wrap(err, "remove default sheet")
		}
		if idx, err := f.GetSheetIndex(result.Sheets[0].Name); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}

	return f, result, nil
}

func (r *Result) addError(name string, err error) {
	zap.L().Warn("skip sheet", zap.String("dataset", name), zap.Error(err))
	r.Errors = append(r.Errors, &htmlreport.DatasetError{Name: name, Err: err})
}

func (w *Writer) styles(f *excelize.File) (int, int, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{w.opts.HeaderColor}},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "header style")
	}
	body, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{w.opts.RowColor}},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "body style")
	}
	return header, body, nil
}

func (w *Writer) writeSheet(f *excelize.File, sheet string, ds *htmlreport.Dataset, headerStyle, bodyStyle int) error {
	cols := len(ds.Columns)
	if cols == 0 {
		return nil
	}

	header := make([]interface{}, cols)
	for i, c := range ds.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i, row := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d", i+1)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return errors.WithStack(err)
	}
	lastRow := len(ds.Rows) + 1

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return errors.Wrap(err, "style header")
	}
	if len(ds.Rows) > 0 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", lastCol, lastRow), bodyStyle); err != nil {
			return errors.Wrap(err, "style rows")
		}
		if w.opts.AutoFilter {
			if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil); err != nil {
				return errors.Wrap(err, "auto filter")
			}
		}
	}

	if w.opts.AutoFit {
		for i, width := range ColumnWidths(ds, w.opts.MaxColumnWidth) {
			name, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
				return errors.Wrap(err, "column width")
			}
		}
	}
	return nil
}

// SheetName truncates a dataset name to the Excel sheet name limit.
func SheetName(name string) string {
	if utf8.RuneCountInString(name) <= MaxSheetNameLength {
		return name
	}
	return string([]rune(name)[:MaxSheetNameLength])
}

// ColumnWidths returns min(longest rendered value + 2, limit) per column,
// header included.
func ColumnWidths(ds *htmlreport.Dataset, limit int) []int {
	widths := make([]int, len(ds.Columns))
	for i, c := range ds.Columns {
		longest := utf8.RuneCountInString(c)
		for _, row := range ds.Rows {
			if i < len(row) {
				if n := utf8.RuneCountInString(Render(row[i])); n > longest {
					longest = n
				}
			}
		}
		widths[i] = longest + 2
		if widths[i] > limit {
			widths[i] = limit
		}
	}
	return widths
}

// Render returns the text a cell value displays as.
func Render(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}

package htmlreport

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// Top-level payload keys
const (
	KeyProperties = "properties"
	KeyDatasets   = "datasets"
	KeySections   = "sections"
)

// Dataset is one flattened table. Nested objects become dotted column names;
// arrays are kept as their JSON text. Cells hold int64, float64, string,
// bool or nil.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]interface{}
}

// DatasetError records a dataset that could not be flattened.
type DatasetError struct {
	Name string
	Err  error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset %s: %v", e.Name, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// Payload is the decoded report data.
type Payload struct {
	Properties   *Dataset
	Datasets     []*Dataset
	Sections     *Dataset
	DatasetCount int
	Errors       []*DatasetError
}

// ParseFile reads an HTML report and decodes its payload.
func ParseFile(path string) (*Payload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Parse(content)
}

// Parse decodes the payload of an HTML page. A missing marker or malformed
// JSON fails the whole page; a dataset that cannot be flattened is recorded
// in Errors and skipped.
func Parse(content []byte) (*Payload, error) {
	raw, err := FindPayload(string(content))
	if err != nil {
		return nil, err
	}

	var p fastjson.Parser
	root, err := p.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse payload JSON")
	}

	payload := &Payload{}

	if v := root.Get(KeyProperties); v != nil {
		payload.Properties = payload.single("Properties", v)
	}

	if obj := root.GetObject(KeyDatasets); obj != nil {
		payload.DatasetCount = obj.Len()
		obj.Visit(func(key []byte, v *fastjson.Value) {
			name := string(key)
			items, err := v.Array()
			if err != nil || len(items) == 0 {
				zap.L().Debug("skip empty dataset", zap.String("dataset", name), zap.String("type", v.Type().String()))
				return
			}
			ds, err := Flatten(name, items)
			if err != nil {
				payload.addError(name, err)
				return
			}
			payload.Datasets = append(payload.Datasets, ds)
		})
	}

	if v := root.Get(KeySections); v != nil {
		if items, err := v.Array(); err == nil {
			ds, err := Flatten("Sections", items)
			if err != nil {
				payload.addError("Sections", err)
			} else {
				payload.Sections = ds
			}
		} else {
			payload.Sections = payload.single("Sections", v)
		}
	}

	return payload, nil
}

// single flattens an object value into a one-row dataset.
func (p *Payload) single(name string, v *fastjson.Value) *Dataset {
	ds, err := Flatten(name, []*fastjson.Value{v})
	if err != nil {
		p.addError(name, err)
		return nil
	}
	return ds
}

func (p *Payload) addError(name string, err error) {
	zap.L().Warn("skip dataset", zap.String("dataset", name), zap.Error(err))
	p.Errors = append(p.Errors, &DatasetError{Name: name, Err: err})
}

// Flatten turns an array of JSON objects into a table. Columns are the union
// of all flattened keys in first-seen order; a row lacking a column gets nil.
func Flatten(name string, items []*fastjson.Value) (*Dataset, error) {
	seen := strset.New()
	ds := &Dataset{Name: name}
	records := make([]map[string]interface{}, 0, len(items))

	for i, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, errors.Errorf("row %d is %s, not an object", i, item.Type())
		}
		rec := make(map[string]interface{}, obj.Len())
		flattenObject("", obj, rec, func(col string) {
			if !seen.Has(col) {
				seen.Add(col)
				ds.Columns = append(ds.Columns, col)
			}
		})
		records = append(records, rec)
	}

	ds.Rows = make([][]interface{}, len(records))
	for i, rec := range records {
		row := make([]interface{}, len(ds.Columns))
		for j, col := range ds.Columns {
			row[j] = rec[col]
		}
		ds.Rows[i] = row
	}
	return ds, nil
}

func flattenObject(prefix string, obj *fastjson.Object, rec map[string]interface{}, addColumn func(string)) {
	obj.Visit(func(k []byte, v *fastjson.Value) {
		key := string(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if v.Type() == fastjson.TypeObject {
			if child, _ := v.Object(); child.Len() > 0 {
				flattenObject(key, child, rec, addColumn)
				return
			}
		}
		addColumn(key)
		rec[key] = cellValue(v)
	})
}

func cellValue(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return n
		}
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	default:
		return v.String()
	}
}

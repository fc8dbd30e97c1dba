package workbook

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the detected type of a cell.
type Kind int

const (
	KindMissing Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindString:
		return "string"
	default:
		return "missing"
	}
}

// Value is a typed cell.
type Value struct {
	Kind  Kind
	Raw   string
	Int   int64
	// IntOK is false for floats outside the int64 range
	IntOK bool
	Float float64
	Bool  bool
	Time  time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseValue types a raw cell string: integer, then float, then boolean,
// then timestamp, falling back to string. Blank cells are missing.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{Kind: KindMissing, Raw: raw}
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Value{Kind: KindInt, Raw: raw, Int: i, IntOK: true, Float: float64(i)}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{Kind: KindMissing, Raw: raw}
		}
		i, ok := floatToInt(f)
		return Value{Kind: KindFloat, Raw: raw, Float: f, Int: i, IntOK: ok}
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return Value{Kind: KindBool, Raw: raw, Bool: true}
	case "FALSE":
		return Value{Kind: KindBool, Raw: raw, Bool: false}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{Kind: KindTime, Raw: raw, Time: t}
		}
	}
	return Value{Kind: KindString, Raw: raw}
}

// floatToInt truncates f toward zero. Values outside the int64 range do
// not convert.
func floatToInt(f float64) (int64, bool) {
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// IsMissing reports whether the cell is blank.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// IsNumeric reports whether the cell holds an int or float.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// Text returns the trimmed cell text.
func (v Value) Text() string {
	return strings.TrimSpace(v.Raw)
}

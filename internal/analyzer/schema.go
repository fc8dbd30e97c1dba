package analyzer

import "github.com/ppiankov/pgreport/internal/workbook"

// TimingSchema identifies which statement timing columns a sheet uses.
type TimingSchema int

const (
	SchemaNone TimingSchema = iota
	SchemaCurrent
	SchemaLegacy
)

func (s TimingSchema) String() string {
	switch s {
	case SchemaCurrent:
		return "current"
	case SchemaLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// Columns returns the total and mean time column names for the schema.
func (s TimingSchema) Columns() (total, mean string) {
	switch s {
	case SchemaCurrent:
		return "total_exec_time", "mean_exec_time"
	case SchemaLegacy:
		return "total_time", "mean_time"
	default:
		return "", ""
	}
}

// DetectTimingSchema picks the timing columns once per table, preferring the
// *_exec_time names.
func DetectTimingSchema(t *workbook.Table) TimingSchema {
	switch {
	case t.HasColumn("total_exec_time"):
		return SchemaCurrent
	case t.HasColumn("total_time"):
		return SchemaLegacy
	default:
		return SchemaNone
	}
}

package analyzer

import (
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/workbook"
)

// Typed projections of the sheet rows. Every field is optional; defaults are
// supplied where the rows are consumed.

type propertiesRow struct {
	Start       models.Optional[string]
	End         models.Optional[string]
	IntervalSec models.Optional[float64]
}

type dbstatRow struct {
	DBName       models.Optional[string]
	Size         models.Optional[string]
	SizeDelta    models.Optional[string]
	BlksHitPct   models.Optional[float64]
	XactCommit   models.Optional[int64]
	XactRollback models.Optional[int64]
	Deadlocks    models.Optional[int64]
	TempFiles    models.Optional[int64]
	TempBytes    models.Optional[int64]
}

type statementRow struct {
	QueryID         models.Optional[string]
	DBName          models.Optional[string]
	Username        models.Optional[string]
	Calls           models.Optional[int64]
	TotalTime       models.Optional[float64]
	MeanTime        models.Optional[float64]
	Rows            models.Optional[int64]
	SharedBlksHit   models.Optional[int64]
	SharedBlksRead  models.Optional[int64]
	TempBlksWritten models.Optional[int64]
	WalBytes        models.Optional[float64]
	WalBytesPct     models.Optional[float64]
}

type walStatsRow struct {
	Records   models.Optional[int64]
	FPI       models.Optional[int64]
	Bytes     models.Optional[float64]
	WriteTime models.Optional[float64]
	SyncTime  models.Optional[float64]
}

type tableRow struct {
	DBName           models.Optional[string]
	Schema           models.Optional[string]
	Relname          models.Optional[string]
	Relsize          models.Optional[string]
	LiveTuples       models.Optional[int64]
	DeadTuples       models.Optional[int64]
	ModsSinceAnalyze models.Optional[int64]
	SeqScan          models.Optional[int64]
	IdxScan          models.Optional[int64]
}

type indexRow struct {
	DBName    models.Optional[string]
	Schema    models.Optional[string]
	Relname   models.Optional[string]
	IndexName models.Optional[string]
	Size      models.Optional[string]
	IdxScan   models.Optional[int64]
}

func readProperties(r workbook.Row) propertiesRow {
	return propertiesRow{
		Start:       r.Text("report_start1"),
		End:         r.Text("report_end1"),
		IntervalSec: r.Float("interval_duration_sec"),
	}
}

func readDBStat(r workbook.Row) dbstatRow {
	return dbstatRow{
		DBName:       r.Text("dbname"),
		Size:         sizeCol(r, "datsize"),
		SizeDelta:    sizeCol(r, "datsize_delta"),
		BlksHitPct:   floatCol(r, "blks_hit_pct"),
		XactCommit:   intCol(r, "xact_commit"),
		XactRollback: intCol(r, "xact_rollback"),
		Deadlocks:    intCol(r, "deadlocks"),
		TempFiles:    intCol(r, "temp_files"),
		TempBytes:    intCol(r, "temp_bytes"),
	}
}

func readStatement(r workbook.Row, schema TimingSchema) statementRow {
	totalCol, meanCol := schema.Columns()
	row := statementRow{
		QueryID:         r.Text("hexqueryid"),
		DBName:          r.Text("dbname"),
		Username:        r.Text("username"),
		Calls:           intCol(r, "calls"),
		Rows:            intCol(r, "rows"),
		SharedBlksHit:   intCol(r, "shared_blks_hit"),
		SharedBlksRead:  intCol(r, "shared_blks_read"),
		TempBlksWritten: intCol(r, "temp_blks_written"),
		WalBytes:        r.Float("wal_bytes"),
		WalBytesPct:     r.Float("wal_bytes_pct"),
	}
	if totalCol != "" {
		row.TotalTime = r.Float(totalCol)
		row.MeanTime = floatCol(r, meanCol)
	}
	return row
}

func readWalStats(r workbook.Row) walStatsRow {
	return walStatsRow{
		Records:   intCol(r, "wal_records"),
		FPI:       intCol(r, "wal_fpi"),
		Bytes:     floatCol(r, "wal_bytes"),
		WriteTime: floatCol(r, "wal_write_time"),
		SyncTime:  floatCol(r, "wal_sync_time"),
	}
}

func readTable(r workbook.Row) tableRow {
	return tableRow{
		DBName:           r.Text("dbname"),
		Schema:           r.Text("schemaname"),
		Relname:          r.Text("relname"),
		Relsize:          sizeCol(r, "relsize"),
		LiveTuples:       intCol(r, "n_live_tup"),
		DeadTuples:       intCol(r, "n_dead_tup"),
		ModsSinceAnalyze: intCol(r, "n_mod_since_analyze"),
		SeqScan:          intCol(r, "seq_scan"),
		IdxScan:          intCol(r, "idx_scan"),
	}
}

func readIndex(r workbook.Row) indexRow {
	return indexRow{
		DBName:    r.Text("dbname"),
		Schema:    r.Text("schemaname"),
		Relname:   r.Text("relname"),
		IndexName: r.Text("indexrelname"),
		Size:      sizeCol(r, "indexrelsize"),
		IdxScan:   r.Int("idx_scan"),
	}
}

// intCol reads a numeric column. An absent column yields 0; a blank cell in a
// present column stays absent so it renders as an empty cell.
func intCol(r workbook.Row, col string) models.Optional[int64] {
	if !r.Has(col) {
		return models.Some[int64](0)
	}
	return r.Int(col)
}

func floatCol(r workbook.Row, col string) models.Optional[float64] {
	if !r.Has(col) {
		return models.Some[float64](0)
	}
	return r.Float(col)
}

// sizeCol reads a descriptive size column: "N/A" when the column is absent,
// absent when the cell is blank.
func sizeCol(r workbook.Row, col string) models.Optional[string] {
	if !r.Has(col) {
		return models.Some("N/A")
	}
	return r.Text(col)
}

package analyzer

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/pgreport/internal/format"
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/ppiankov/pgreport/internal/workbook"
)

const (
	unknownValue = "unknown"
	notAvailable = "N/A"
	bytesPerMB   = 1024 * 1024
)

// ExtractPeriod reads the monitoring window from the first Properties row.
func ExtractPeriod(t *workbook.Table) models.ReportPeriod {
	period := models.ReportPeriod{Start: unknownValue, End: unknownValue}

	row, ok := t.First()
	if !ok {
		return period
	}

	p := readProperties(row)
	period.Start = p.Start.Or(unknownValue)
	period.End = p.End.Or(unknownValue)
	if sec := p.IntervalSec; sec.Valid && sec.Value >= 0 {
		period.DurationMinutes = int(math.Floor(sec.Value / 60))
	}
	return period
}

// ExtractDatabases projects every dbstat row and runs the database checks.
func ExtractDatabases(t *workbook.Table, th thresholds.Thresholds) []models.DatabaseMetrics {
	result := make([]models.DatabaseMetrics, 0, t.Len())

	for _, r := range t.Rows {
		d := readDBStat(r)
		db := models.DatabaseMetrics{
			Name:        d.DBName.Or("Unknown"),
			Size:        d.Size.Or(""),
			SizeDelta:   d.SizeDelta.Or(""),
			CacheHitPct: d.BlksHitPct,
			Commits:     d.XactCommit,
			Rollbacks:   d.XactRollback,
			Deadlocks:   d.Deadlocks,
			TempFiles:   d.TempFiles,
			TempBytes:   d.TempBytes,
		}
		db.RollbackRatio = RollbackRatio(d.XactCommit, d.XactRollback)
		db.Findings = DatabaseFindings(db, th)
		result = append(result, db)
	}

	return result
}

// RollbackRatio is rollbacks / (commits + rollbacks) * 100, or 0 when no
// transactions were recorded. It is absent when either count is.
func RollbackRatio(commits, rollbacks models.Optional[int64]) models.Optional[float64] {
	if !commits.Valid || !rollbacks.Valid {
		return models.None[float64]()
	}
	total := commits.Value + rollbacks.Value
	if total <= 0 {
		return models.Some(0.0)
	}
	return models.Some(float64(rollbacks.Value) / float64(total) * 100)
}

// CacheRatio is hit / (hit + read) * 100, or 100 when no blocks were touched.
func CacheRatio(hit, read int64) float64 {
	total := hit + read
	if total <= 0 {
		return 100
	}
	return float64(hit) / float64(total) * 100
}

// QueryTexts maps hex query ids to their SQL with whitespace runs collapsed.
// The first row for an id wins.
func QueryTexts(t *workbook.Table) map[string]string {
	texts := make(map[string]string, t.Len())
	for _, r := range t.Rows {
		id := r.Text("hexqueryid")
		text := r.Text("query_texts")
		if !id.Valid || !text.Valid {
			continue
		}
		if _, seen := texts[id.Value]; seen {
			continue
		}
		if collapsed := strings.Join(strings.Fields(text.Value), " "); collapsed != "" {
			texts[id.Value] = collapsed
		}
	}
	return texts
}

// Preview truncates resolved SQL to n characters plus "..." when longer.
// Unresolved text is "N/A" with no ellipsis.
func Preview(text string, resolved bool, n int) string {
	if !resolved || text == "" {
		return notAvailable
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}

func lookupPreview(texts map[string]string, id string, n int) string {
	text, ok := texts[id]
	return Preview(text, ok, n)
}

// ExtractTopQueries selects the n statements with the highest total time.
// Ties keep sheet order; rows without a total time sort last.
func ExtractTopQueries(t *workbook.Table, texts map[string]string, n, previewLen int, th thresholds.Thresholds) ([]models.QueryMetrics, TimingSchema) {
	schema := DetectTimingSchema(t)
	if schema == SchemaNone || t.IsEmpty() {
		return []models.QueryMetrics{}, schema
	}

	rows := make([]statementRow, 0, t.Len())
	for _, r := range t.Rows {
		rows = append(rows, readStatement(r, schema))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].TotalTime, rows[j].TotalTime
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Value > b.Value
	})
	if len(rows) > n {
		rows = rows[:n]
	}

	result := make([]models.QueryMetrics, 0, len(rows))
	for _, s := range rows {
		id := s.QueryID.Or(notAvailable)
		q := models.QueryMetrics{
			QueryID:    id,
			Preview:    lookupPreview(texts, id, previewLen),
			Database:   s.DBName.Or(notAvailable),
			User:       s.Username.Or(notAvailable),
			Calls:      s.Calls,
			TotalTime:  s.TotalTime,
			MeanTime:   s.MeanTime,
			Rows:       s.Rows,
			SharedHit:  s.SharedBlksHit,
			SharedRead: s.SharedBlksRead,
			CacheRatio: CacheRatio(s.SharedBlksHit.Or(0), s.SharedBlksRead.Or(0)),
			TempBlocks: s.TempBlksWritten,
		}
		q.Findings = QueryFindings(q, th)
		q.Recommendations = QueryRecommendations(q, th)
		result = append(result, q)
	}

	return result, schema
}

// ExtractTopWalQueries selects the n statements with the most WAL bytes.
// A sheet without a wal_bytes column yields no rows.
func ExtractTopWalQueries(t *workbook.Table, texts map[string]string, n, previewLen int) []models.WalQuery {
	if !t.HasColumn("wal_bytes") {
		return []models.WalQuery{}
	}

	var rows []statementRow
	for _, r := range t.Rows {
		s := readStatement(r, SchemaNone)
		if s.WalBytes.Valid && s.WalBytes.Value > 0 {
			rows = append(rows, s)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].WalBytes.Value > rows[j].WalBytes.Value
	})
	if len(rows) > n {
		rows = rows[:n]
	}

	result := make([]models.WalQuery, 0, len(rows))
	for _, s := range rows {
		id := s.QueryID.Or(notAvailable)
		mb := s.WalBytes.Value / bytesPerMB
		var gb float64
		if mb > 1024 {
			gb = format.Round(mb/1024, 3)
		}
		var pct float64
		if s.WalBytesPct.Valid {
			pct = format.Round(s.WalBytesPct.Value, 2)
		}
		result = append(result, models.WalQuery{
			QueryID:  id,
			Preview:  lookupPreview(texts, id, previewLen),
			Database: s.DBName.Or(notAvailable),
			Calls:    s.Calls,
			WalBytes: s.WalBytes.Value,
			WalMB:    format.Round(mb, 2),
			WalGB:    gb,
			WalPct:   pct,
		})
	}
	return result
}

// ExtractWal summarizes the first wal_stats row. It returns nil when the
// sheet has no rows.
func ExtractWal(t *workbook.Table, durationMinutes int, th thresholds.Thresholds) *models.WalSummary {
	row, ok := t.First()
	if !ok {
		return nil
	}

	w := readWalStats(row)
	var mb float64
	if w.Bytes.Valid {
		mb = w.Bytes.Value / bytesPerMB
	}

	summary := &models.WalSummary{
		Records:   w.Records,
		FPI:       w.FPI,
		Bytes:     w.Bytes,
		SizeMB:    mb,
		SizeGB:    mb / 1024,
		WriteTime: w.WriteTime,
		SyncTime:  w.SyncTime,
	}
	summary.RatePerMinute, summary.RateClass = ClassifyWalRate(mb, durationMinutes, th)
	summary.Findings = WalFindings(summary)
	return summary
}

// ClassifyWalRate computes MB generated per monitoring minute and its class.
// A zero duration yields a rate of 0.
func ClassifyWalRate(sizeMB float64, durationMinutes int, th thresholds.Thresholds) (float64, string) {
	var rate float64
	if durationMinutes > 0 {
		rate = sizeMB / float64(durationMinutes)
	}
	switch {
	case rate > th.WalHighMBPerMin:
		return rate, models.WalRateHigh
	case rate > th.WalModerateMBPerMin:
		return rate, models.WalRateModerate
	default:
		return rate, models.WalRateNormal
	}
}

// ExtractProblemTables keeps top_tables rows with at least one finding and
// returns the n with the most findings. Ties keep sheet order. The second
// value is the number of problem tables before the cut.
func ExtractProblemTables(t *workbook.Table, n int, th thresholds.Thresholds) ([]models.TableMetrics, int) {
	var result []models.TableMetrics

	for _, r := range t.Rows {
		tr := readTable(r)
		tm := models.TableMetrics{
			Database:         tr.DBName.Or(notAvailable),
			Schema:           tr.Schema.Or(notAvailable),
			Table:            tr.Relname.Or(notAvailable),
			Size:             tr.Relsize.Or(""),
			LiveTuples:       tr.LiveTuples,
			DeadTuples:       tr.DeadTuples,
			DeadRatio:        DeadRatio(tr.LiveTuples.Or(0), tr.DeadTuples.Or(0)),
			ModsSinceAnalyze: tr.ModsSinceAnalyze,
			SeqScan:          tr.SeqScan,
			IdxScan:          tr.IdxScan,
		}
		tm.Findings = TableFindings(tm, th)
		if len(tm.Findings) == 0 {
			continue
		}
		tm.Recommendations = TableRecommendations(tm, th)
		result = append(result, tm)
	}

	total := len(result)
	sort.SliceStable(result, func(i, j int) bool {
		return len(result[i].Findings) > len(result[j].Findings)
	})
	if len(result) > n {
		result = result[:n]
	}
	if result == nil {
		result = []models.TableMetrics{}
	}
	return result, total
}

// DeadRatio is dead / live * 100, or 0 when there are no live tuples.
func DeadRatio(live, dead int64) float64 {
	if live <= 0 {
		return 0
	}
	return float64(dead) / float64(live) * 100
}

// ExtractUnusedIndexes lists top_indexes rows whose recorded scan count is 0.
func ExtractUnusedIndexes(t *workbook.Table) []models.UnusedIndex {
	result := []models.UnusedIndex{}
	for _, r := range t.Rows {
		ir := readIndex(r)
		if !ir.IdxScan.Valid || ir.IdxScan.Value != 0 {
			continue
		}
		result = append(result, models.UnusedIndex{
			Database: ir.DBName.Or(notAvailable),
			Schema:   ir.Schema.Or(notAvailable),
			Table:    ir.Relname.Or(notAvailable),
			Index:    ir.IndexName.Or(notAvailable),
			Size:     ir.Size.Or(""),
		})
	}
	return result
}

package analyzer

import (
	"fmt"

	"github.com/ppiankov/pgreport/internal/format"
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/thresholds"
)

// Each *Findings function runs its checks in a fixed order. Checks are
// independent of one another.

// DatabaseFindings evaluates the dbstat checks for one database.
func DatabaseFindings(db models.DatabaseMetrics, th thresholds.Thresholds) []models.Finding {
	findings := []models.Finding{}

	if hit := db.CacheHitPct; hit.Valid && hit.Value < th.CacheHitPct {
		sev := models.SeverityWarning
		if hit.Value < th.CacheHitCriticalPct {
			sev = models.SeverityCritical
		}
		findings = append(findings, models.Finding{
			Check:    models.CheckLowCacheHit,
			Severity: sev,
			Message:  "Low cache hit ratio: " + format.Percent(hit.Value),
		})
	}

	if d := db.Deadlocks.Or(0); d > 0 {
		findings = append(findings, models.Finding{
			Check:    models.CheckDeadlocks,
			Severity: models.SeverityCritical,
			Message:  "Deadlocks detected: " + format.Count(d),
		})
	}

	if tf := db.TempFiles.Or(0); tf > 0 {
		msg := "Temporary files used: " + format.Count(tf)
		if db.TempBytes.Valid {
			msg += fmt.Sprintf(" (%s bytes)", format.Count(db.TempBytes.Value))
		}
		findings = append(findings, models.Finding{
			Check:    models.CheckTempFiles,
			Severity: models.SeverityWarning,
			Message:  msg,
		})
	}

	if rr := db.RollbackRatio; rr.Valid && rr.Value > th.RollbackPct {
		findings = append(findings, models.Finding{
			Check:    models.CheckHighRollback,
			Severity: models.SeverityWarning,
			Message:  "High rollback ratio: " + format.Percent(rr.Value),
		})
	}

	return findings
}

// QueryFindings evaluates the per-statement checks.
func QueryFindings(q models.QueryMetrics, th thresholds.Thresholds) []models.Finding {
	findings := []models.Finding{}

	if isSlow(q, th) {
		findings = append(findings, models.Finding{
			Check:    models.CheckSlowQuery,
			Severity: models.SeverityWarning,
			Message:  "Slow query: mean time " + format.Millis(q.MeanTime.Value),
		})
	}

	if tb := q.TempBlocks.Or(0); tb > 0 {
		findings = append(findings, models.Finding{
			Check:    models.CheckQueryTemp,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Uses temp storage: %s blocks written", format.Count(tb)),
		})
	}

	if q.CacheRatio < th.QueryCacheHitPct {
		findings = append(findings, models.Finding{
			Check:    models.CheckQueryLowCache,
			Severity: models.SeverityWarning,
			Message:  "Low cache hit ratio for query: " + format.Percent(q.CacheRatio),
		})
	}

	return findings
}

func isSlow(q models.QueryMetrics, th thresholds.Thresholds) bool {
	return q.MeanTime.Valid && q.MeanTime.Value > th.SlowQueryMs
}

// TableFindings evaluates the per-table checks.
func TableFindings(t models.TableMetrics, th thresholds.Thresholds) []models.Finding {
	findings := []models.Finding{}
	live := t.LiveTuples.Or(0)

	if live > 0 && t.DeadRatio > th.DeadTuplePct {
		findings = append(findings, models.Finding{
			Check:    models.CheckTableBloat,
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("High dead tuple ratio: %s%% (%s dead tuples)",
				format.Fixed(t.DeadRatio, 1), format.Count(t.DeadTuples.Or(0))),
		})
	}

	if live > 0 && needsAnalyze(t, th) {
		findings = append(findings, models.Finding{
			Check:    models.CheckStaleStats,
			Severity: models.SeverityInfo,
			Message: fmt.Sprintf("Stale statistics: %s modifications since last ANALYZE",
				format.Count(t.ModsSinceAnalyze.Or(0))),
		})
	}

	if isSeqScanCandidate(t, th) {
		findings = append(findings, models.Finding{
			Check:    models.CheckSeqScan,
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf("Frequent sequential scans: %s (an index may be missing)",
				format.Count(t.SeqScan.Or(0))),
		})
	}

	return findings
}

func needsVacuum(t models.TableMetrics, th thresholds.Thresholds) bool {
	return float64(t.DeadTuples.Or(0)) > float64(t.LiveTuples.Or(0))*th.DeadTuplePct/100
}

func needsAnalyze(t models.TableMetrics, th thresholds.Thresholds) bool {
	return float64(t.ModsSinceAnalyze.Or(0)) > float64(t.LiveTuples.Or(0))*th.StaleAnalyzeRatio
}

func isSeqScanCandidate(t models.TableMetrics, th thresholds.Thresholds) bool {
	return t.SeqScan.Or(0) > th.SeqScanMin && t.LiveTuples.Or(0) > th.SeqScanLiveTuples
}

// WalFindings reports elevated WAL generation.
func WalFindings(w *models.WalSummary) []models.Finding {
	findings := []models.Finding{}
	rate := format.Fixed(w.RatePerMinute, 2)

	switch w.RateClass {
	case models.WalRateHigh:
		findings = append(findings, models.Finding{
			Check:    models.CheckWalRate,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("High WAL generation rate: %s MB/min, likely heavy write activity", rate),
		})
	case models.WalRateModerate:
		findings = append(findings, models.Finding{
			Check:    models.CheckWalRate,
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Moderate WAL generation rate: %s MB/min", rate),
		})
	}

	return findings
}

package analyzer

import (
	"fmt"
	"sort"

	"github.com/ppiankov/pgreport/internal/format"
	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/scylladb/go-set/strset"
)

const (
	remedySlowQuery     = "Consider optimizing the query or adding indexes"
	remedyQueryTemp     = "Increase `work_mem` to avoid temporary files"
	remedyQueryLowCache = "Check indexes and table statistics"
	remedySeqScan       = "Consider creating an index for frequent queries; review plans with EXPLAIN ANALYZE"
	remedyCacheHit      = "Increase `shared_buffers`"
	remedyDeadlocks     = "Review application locking order"
	remedyTempFiles     = "Increase `work_mem`"
	remedyRollback      = "Review application error handling and retries"
	remedyWal           = "Review write-heavy workloads and checkpoint settings"
)

// QueryRecommendations maps a statement's conditions to remediation text.
func QueryRecommendations(q models.QueryMetrics, th thresholds.Thresholds) []string {
	recs := []string{}
	if isSlow(q, th) {
		recs = append(recs, remedySlowQuery)
	}
	if q.TempBlocks.Or(0) > 0 {
		recs = append(recs, remedyQueryTemp)
	}
	if q.CacheRatio < th.QueryCacheHitPct {
		recs = append(recs, remedyQueryLowCache)
	}
	return recs
}

// TableRecommendations maps a table's conditions to remediation text,
// including the SQL to run.
func TableRecommendations(t models.TableMetrics, th thresholds.Thresholds) []string {
	recs := []string{}
	if needsVacuum(t, th) {
		recs = append(recs, vacuumStatement(t))
	}
	if needsAnalyze(t, th) {
		recs = append(recs, analyzeStatement(t))
	}
	if isSeqScanCandidate(t, th) {
		recs = append(recs, remedySeqScan)
	}
	return recs
}

func vacuumStatement(t models.TableMetrics) string {
	return fmt.Sprintf("Run `VACUUM ANALYZE %s;`", t.QualifiedName())
}

func analyzeStatement(t models.TableMetrics) string {
	return fmt.Sprintf("Run `ANALYZE %s;`", t.QualifiedName())
}

// DropIndexStatement returns the SQL that removes an unused index.
func DropIndexStatement(idx models.UnusedIndex) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s.%s;", idx.Schema, idx.Index)
}

// summaryInput is what Summarize needs from an analysis.
type summaryInput struct {
	databases     []models.DatabaseMetrics
	queries       []models.QueryMetrics
	problemTables int
	unusedIndexes int
}

// Summarize builds the healthy / critical / recommendation lists.
func Summarize(in summaryInput, th thresholds.Thresholds) models.Summary {
	s := models.Summary{
		Healthy:         []string{},
		Critical:        []string{},
		Recommendations: []models.Recommendation{},
	}

	for _, db := range in.databases {
		if hit := db.CacheHitPct; hit.Valid && hit.Value >= th.CacheHitPct {
			s.Healthy = append(s.Healthy,
				fmt.Sprintf("Excellent cache hit ratio in database `%s`: %s", db.Name, format.Percent(hit.Value)))
		}
		if d := db.Deadlocks; d.Valid && d.Value == 0 {
			s.Healthy = append(s.Healthy, fmt.Sprintf("No deadlocks in database `%s`", db.Name))
		}
	}
	if len(s.Healthy) == 0 {
		s.Healthy = append(s.Healthy, "The database is generally stable")
	}

	for _, db := range in.databases {
		if hit := db.CacheHitPct; hit.Valid && hit.Value < th.CacheHitCriticalPct {
			s.Critical = append(s.Critical,
				fmt.Sprintf("**Very low cache hit ratio** in `%s`: %s - increase `shared_buffers`",
					db.Name, format.Percent(hit.Value)))
		}
		if d := db.Deadlocks.Or(0); d > 0 {
			s.Critical = append(s.Critical,
				fmt.Sprintf("**Deadlocks** in `%s`: %s - review application locking order", db.Name, format.Count(d)))
		}
	}

	seen := strset.New()
	add := func(priority, action string, count int) {
		if seen.Has(action) {
			return
		}
		seen.Add(action)
		s.Recommendations = append(s.Recommendations, models.Recommendation{
			Priority: priority,
			Action:   action,
			Count:    count,
		})
	}

	for _, db := range in.databases {
		if db.TempFiles.Or(0) > 0 {
			add(models.PriorityMedium, "**Increase work_mem** - temporary file usage detected", 0)
		}
		if hit := db.CacheHitPct; hit.Valid && hit.Value >= th.CacheHitCriticalPct && hit.Value < th.CacheHitPct {
			add(models.PriorityMedium,
				fmt.Sprintf("**Consider increasing shared_buffers** - cache hit ratio %s can be improved",
					format.Percent(hit.Value)), 0)
		}
	}

	if in.problemTables > 0 {
		add(models.PriorityMedium,
			fmt.Sprintf("**Tune autovacuum** - %d tables with dead tuples or stale statistics detected", in.problemTables),
			in.problemTables)
	}

	if in.unusedIndexes > 0 {
		add(models.PriorityLow,
			fmt.Sprintf("**Drop %d unused indexes** - frees space and speeds up writes", in.unusedIndexes),
			in.unusedIndexes)
	}

	slow := 0
	for _, q := range in.queries {
		if isSlow(q, th) {
			slow++
		}
	}
	if slow > 0 {
		add(models.PriorityHigh,
			fmt.Sprintf("**Optimize %d slow queries** - use EXPLAIN ANALYZE to inspect their plans", slow), slow)
	}

	if len(s.Recommendations) == 0 {
		add(models.PriorityLow, "The database is well tuned, no critical recommendations", 0)
	}

	sort.SliceStable(s.Recommendations, func(i, j int) bool {
		return priorityRank(s.Recommendations[i].Priority) > priorityRank(s.Recommendations[j].Priority)
	})

	return s
}

// priorityRank returns numeric priority for sorting
func priorityRank(priority string) int {
	switch priority {
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 1
	default:
		return 0
	}
}

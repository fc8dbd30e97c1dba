package analyzer

import (
	"github.com/ppiankov/pgreport/internal/models"
)

// Flatten turns every finding of an analysis into a flat issue list, in
// report order, each paired with its remedy.
func Flatten(a *models.Analysis) []models.Issue {
	issues := []models.Issue{}

	for _, db := range a.Databases {
		for _, f := range db.Findings {
			issues = append(issues, issueFrom(models.TopicDatabase, db.Name, f, databaseRemedy(f.Check)))
		}
	}

	if a.Wal != nil {
		for _, f := range a.Wal.Findings {
			issues = append(issues, issueFrom(models.TopicWal, "wal", f, remedyWal))
		}
	}

	for _, q := range a.TopQueries {
		for _, f := range q.Findings {
			issues = append(issues, issueFrom(models.TopicQuery, q.QueryID, f, queryRemedy(f.Check)))
		}
	}

	for _, t := range a.ProblemTables {
		for _, f := range t.Findings {
			issues = append(issues, issueFrom(models.TopicTable, t.QualifiedName(), f, tableRemedy(t, f.Check)))
		}
	}

	for _, idx := range a.UnusedIndexes {
		issues = append(issues, models.Issue{
			Topic:    models.TopicIndex,
			Subject:  idx.Schema + "." + idx.Index,
			Check:    "unused_index",
			Severity: models.SeverityInfo,
			Message:  "Index on " + idx.Schema + "." + idx.Table + " was never scanned",
			Remedy:   DropIndexStatement(idx),
		})
	}

	return issues
}

func issueFrom(topic, subject string, f models.Finding, remedy string) models.Issue {
	return models.Issue{
		Topic:    topic,
		Subject:  subject,
		Check:    f.Check,
		Severity: f.Severity,
		Message:  f.Message,
		Remedy:   remedy,
	}
}

func databaseRemedy(check string) string {
	switch check {
	case models.CheckLowCacheHit:
		return remedyCacheHit
	case models.CheckDeadlocks:
		return remedyDeadlocks
	case models.CheckTempFiles:
		return remedyTempFiles
	case models.CheckHighRollback:
		return remedyRollback
	}
	return ""
}

func queryRemedy(check string) string {
	switch check {
	case models.CheckSlowQuery:
		return remedySlowQuery
	case models.CheckQueryTemp:
		return remedyQueryTemp
	case models.CheckQueryLowCache:
		return remedyQueryLowCache
	}
	return ""
}

func tableRemedy(t models.TableMetrics, check string) string {
	switch check {
	case models.CheckTableBloat:
		return vacuumStatement(t)
	case models.CheckStaleStats:
		return analyzeStatement(t)
	case models.CheckSeqScan:
		return remedySeqScan
	}
	return ""
}

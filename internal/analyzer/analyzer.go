package analyzer

import (
	"fmt"
	"time"

	"github.com/ppiankov/pgreport/internal/models"
	"github.com/ppiankov/pgreport/internal/thresholds"
	"github.com/ppiankov/pgreport/internal/workbook"
	"go.uber.org/zap"
)

// Options controls selection limits and thresholds.
type Options struct {
	TopQueries    int
	TopWalQueries int
	TopTables     int
	PreviewLength int
	Thresholds    thresholds.Thresholds
}

// DefaultOptions returns the stock limits and thresholds.
func DefaultOptions() Options {
	return Options{
		TopQueries:    10,
		TopWalQueries: 5,
		TopTables:     10,
		PreviewLength: 50,
		Thresholds:    thresholds.Default(),
	}
}

// Analyzer turns a loaded workbook into an Analysis.
type Analyzer struct {
	opts Options
	now  func() time.Time
}

// New creates an analyzer
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts, now: time.Now}
}

// WithClock replaces the clock used for the generation timestamp.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze extracts metrics from every expected sheet, evaluates the checks
// and builds the summary. Missing sheets yield empty sections.
func (a *Analyzer) Analyze(wb *workbook.Workbook) *models.Analysis {
	th := a.opts.Thresholds

	analysis := &models.Analysis{
		Source:      wb.Name,
		GeneratedAt: a.now(),
	}

	for _, serr := range wb.Errors {
		analysis.Warnings = append(analysis.Warnings, serr.Error())
	}

	analysis.Period = ExtractPeriod(wb.Sheet(workbook.SheetProperties))
	analysis.Databases = ExtractDatabases(wb.Sheet(workbook.SheetDBStat), th)

	statements := wb.Sheet(workbook.SheetTopStatements)
	texts := QueryTexts(wb.Sheet(workbook.SheetQueries))

	var schema TimingSchema
	analysis.TopQueries, schema = ExtractTopQueries(statements, texts, a.opts.TopQueries, a.opts.PreviewLength, th)
	if schema == SchemaNone && !statements.IsEmpty() {
		msg := fmt.Sprintf("sheet %q has neither total_exec_time nor total_time, skipping top queries", workbook.SheetTopStatements)
		analysis.Warnings = append(analysis.Warnings, msg)
		zap.L().Warn("no timing columns",
			zap.String("file", wb.Name),
			zap.String("sheet", workbook.SheetTopStatements))
	} else {
		zap.L().Debug("timing schema detected",
			zap.String("file", wb.Name),
			zap.String("schema", schema.String()))
	}

	analysis.Wal = ExtractWal(wb.Sheet(workbook.SheetWalStats), analysis.Period.DurationMinutes, th)
	analysis.WalQueries = ExtractTopWalQueries(statements, texts, a.opts.TopWalQueries, a.opts.PreviewLength)

	tables := wb.Sheet(workbook.SheetTopTables)
	var problemTables int
	analysis.ProblemTables, problemTables = ExtractProblemTables(tables, a.opts.TopTables, th)

	indexes := wb.Sheet(workbook.SheetTopIndexes)
	analysis.UnusedIndexes = ExtractUnusedIndexes(indexes)

	analysis.Summary = Summarize(summaryInput{
		databases:     analysis.Databases,
		queries:       analysis.TopQueries,
		problemTables: len(analysis.ProblemTables),
		unusedIndexes: len(analysis.UnusedIndexes),
	}, th)

	analysis.Issues = Flatten(analysis)
	a.calculateHealth(analysis, tables.Len(), problemTables, indexes.Len())

	zap.L().Info("workbook analyzed",
		zap.String("file", wb.Name),
		zap.Int("databases", len(analysis.Databases)),
		zap.Int("top_queries", len(analysis.TopQueries)),
		zap.Int("problem_tables", problemTables),
		zap.Int("unused_indexes", len(analysis.UnusedIndexes)),
		zap.Int("issues", len(analysis.Issues)))

	return analysis
}

// calculateHealth counts issues by severity and scores the share of inspected
// objects without findings.
func (a *Analyzer) calculateHealth(analysis *models.Analysis, tableRows, problemTables, indexRows int) {
	bySeverity := make(map[string]int)
	for _, issue := range analysis.Issues {
		bySeverity[issue.Severity]++
	}
	analysis.Summary.IssuesBySeverity = bySeverity

	total := len(analysis.Databases) + len(analysis.TopQueries) + tableRows + indexRows
	affected := problemTables + len(analysis.UnusedIndexes)
	for _, db := range analysis.Databases {
		if len(db.Findings) > 0 {
			affected++
		}
	}
	for _, q := range analysis.TopQueries {
		if len(q.Findings) > 0 {
			affected++
		}
	}

	analysis.Summary.HealthScore, analysis.Summary.ScorePercent = models.CalculateHealthScore(affected, total)
}

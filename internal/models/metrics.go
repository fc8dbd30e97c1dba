package models

// ReportPeriod is the monitoring window taken from the Properties sheet.
type ReportPeriod struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

// DatabaseMetrics is one row of the dbstat sheet.
type DatabaseMetrics struct {
	Name          string            `json:"name"`
	Size          string            `json:"size"`
	SizeDelta     string            `json:"size_delta"`
	CacheHitPct   Optional[float64] `json:"cache_hit_pct"`
	Commits       Optional[int64]   `json:"commits"`
	Rollbacks     Optional[int64]   `json:"rollbacks"`
	RollbackRatio Optional[float64] `json:"rollback_ratio"`
	Deadlocks     Optional[int64]   `json:"deadlocks"`
	TempFiles     Optional[int64]   `json:"temp_files"`
	TempBytes     Optional[int64]   `json:"temp_bytes"`
	Findings      []Finding         `json:"findings"`
}

// QueryMetrics is one selected row of top_statements.
type QueryMetrics struct {
	QueryID         string            `json:"query_id"`
	Preview         string            `json:"preview"`
	Database        string            `json:"database"`
	User            string            `json:"user"`
	Calls           Optional[int64]   `json:"calls"`
	TotalTime       Optional[float64] `json:"total_time"` // seconds
	MeanTime        Optional[float64] `json:"mean_time"`  // milliseconds
	Rows            Optional[int64]   `json:"rows"`
	SharedHit       Optional[int64]   `json:"shared_blks_hit"`
	SharedRead      Optional[int64]   `json:"shared_blks_read"`
	CacheRatio      float64           `json:"cache_ratio"`
	TempBlocks      Optional[int64]   `json:"temp_blks_written"`
	Findings        []Finding         `json:"findings"`
	Recommendations []string          `json:"recommendations"`
}

// WalQuery is one statement ranked by WAL volume.
type WalQuery struct {
	QueryID  string          `json:"query_id"`
	Preview  string          `json:"preview"`
	Database string          `json:"database"`
	Calls    Optional[int64] `json:"calls"`
	WalBytes float64         `json:"wal_bytes"`
	WalMB    float64         `json:"wal_mb"`
	WalGB    float64         `json:"wal_gb"`
	WalPct   float64         `json:"wal_pct"`
}

// WAL generation rate classes
const (
	WalRateHigh     = "high"
	WalRateModerate = "moderate"
	WalRateNormal   = "normal"
)

// WalSummary is derived from the first row of wal_stats.
type WalSummary struct {
	Records       Optional[int64]   `json:"records"`
	FPI           Optional[int64]   `json:"fpi"`
	Bytes         Optional[float64] `json:"bytes"`
	SizeMB        float64           `json:"size_mb"`
	SizeGB        float64           `json:"size_gb"`
	WriteTime     Optional[float64] `json:"write_time"`
	SyncTime      Optional[float64] `json:"sync_time"`
	RatePerMinute float64           `json:"rate_mb_per_min"`
	RateClass     string            `json:"rate_class"`
	Findings      []Finding         `json:"findings"`
}

// TableMetrics is one top_tables row that tripped at least one check.
type TableMetrics struct {
	Database         string          `json:"database"`
	Schema           string          `json:"schema"`
	Table            string          `json:"table"`
	Size             string          `json:"size"`
	LiveTuples       Optional[int64] `json:"live_tuples"`
	DeadTuples       Optional[int64] `json:"dead_tuples"`
	DeadRatio        float64         `json:"dead_ratio"`
	ModsSinceAnalyze Optional[int64] `json:"mods_since_analyze"`
	SeqScan          Optional[int64] `json:"seq_scan"`
	IdxScan          Optional[int64] `json:"idx_scan"`
	Findings         []Finding       `json:"findings"`
	Recommendations  []string        `json:"recommendations"`
}

// QualifiedName returns schema.table.
func (t TableMetrics) QualifiedName() string {
	return t.Schema + "." + t.Table
}

// UnusedIndex is a top_indexes row with zero recorded scans.
type UnusedIndex struct {
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	Index    string `json:"index"`
	Size     string `json:"size"`
}

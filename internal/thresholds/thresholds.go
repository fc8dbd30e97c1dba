package thresholds

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Thresholds holds every limit the rule checks compare against.
type Thresholds struct {
	CacheHitPct         float64 // database cache hit below this is a finding
	CacheHitCriticalPct float64 // below this the finding is critical
	RollbackPct         float64
	SlowQueryMs         float64
	QueryCacheHitPct    float64
	DeadTuplePct        float64 // dead/live ratio, percent
	StaleAnalyzeRatio   float64 // mods since analyze relative to live tuples
	SeqScanMin          int64
	SeqScanLiveTuples   int64
	WalHighMBPerMin     float64
	WalModerateMBPerMin float64
}

// Default returns the stock thresholds.
func Default() Thresholds {
	return Thresholds{
		CacheHitPct:         95,
		CacheHitCriticalPct: 90,
		RollbackPct:         5,
		SlowQueryMs:         1000,
		QueryCacheHitPct:    90,
		DeadTuplePct:        20,
		StaleAnalyzeRatio:   0.2,
		SeqScanMin:          100,
		SeqScanLiveTuples:   10000,
		WalHighMBPerMin:     100,
		WalModerateMBPerMin: 50,
	}
}

// Validate checks that the thresholds are internally consistent.
func (t Thresholds) Validate() error {
	if t.CacheHitCriticalPct > t.CacheHitPct {
		return errors.Errorf("cache_hit_critical_pct (%.2f) must not exceed cache_hit_pct (%.2f)",
			t.CacheHitCriticalPct, t.CacheHitPct)
	}
	if t.WalModerateMBPerMin > t.WalHighMBPerMin {
		return errors.Errorf("wal_moderate_mb_per_min (%.2f) must not exceed wal_high_mb_per_min (%.2f)",
			t.WalModerateMBPerMin, t.WalHighMBPerMin)
	}
	if t.StaleAnalyzeRatio < 0 || t.DeadTuplePct < 0 {
		return errors.New("table ratios must not be negative")
	}
	return nil
}

// File is the on-disk override document.
type File struct {
	Version    string    `yaml:"version"`
	Thresholds Overrides `yaml:"thresholds"`
}

// Overrides contains optional replacements for the default thresholds.
type Overrides struct {
	CacheHitPct         *float64 `yaml:"cache_hit_pct,omitempty"`
	CacheHitCriticalPct *float64 `yaml:"cache_hit_critical_pct,omitempty"`
	RollbackPct         *float64 `yaml:"rollback_pct,omitempty"`
	SlowQueryMs         *float64 `yaml:"slow_query_ms,omitempty"`
	QueryCacheHitPct    *float64 `yaml:"query_cache_hit_pct,omitempty"`
	DeadTuplePct        *float64 `yaml:"dead_tuple_pct,omitempty"`
	StaleAnalyzeRatio   *float64 `yaml:"stale_analyze_ratio,omitempty"`
	SeqScanMin          *int64   `yaml:"seq_scan_min,omitempty"`
	SeqScanLiveTuples   *int64   `yaml:"seq_scan_live_tuples,omitempty"`
	WalHighMBPerMin     *float64 `yaml:"wal_high_mb_per_min,omitempty"`
	WalModerateMBPerMin *float64 `yaml:"wal_moderate_mb_per_min,omitempty"`
}

// LoadFromFile reads an override file. A missing file yields nil, nil.
func LoadFromFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read thresholds")
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse thresholds")
	}

	return &f, nil
}

// FindFile searches for an override file in the current directory
// and parent directories up to the filesystem root.
func FindFile() string {
	names := []string{".pgreport-thresholds.yaml", ".pgreport-thresholds.yml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Apply merges the overrides over base.
func (f *File) Apply(base Thresholds) Thresholds {
	if f == nil {
		return base
	}
	o := f.Thresholds
	setFloat(&base.CacheHitPct, o.CacheHitPct)
	setFloat(&base.CacheHitCriticalPct, o.CacheHitCriticalPct)
	setFloat(&base.RollbackPct, o.RollbackPct)
	setFloat(&base.SlowQueryMs, o.SlowQueryMs)
	setFloat(&base.QueryCacheHitPct, o.QueryCacheHitPct)
	setFloat(&base.DeadTuplePct, o.DeadTuplePct)
	setFloat(&base.StaleAnalyzeRatio, o.StaleAnalyzeRatio)
	if o.SeqScanMin != nil {
		base.SeqScanMin = *o.SeqScanMin
	}
	if o.SeqScanLiveTuples != nil {
		base.SeqScanLiveTuples = *o.SeqScanLiveTuples
	}
	setFloat(&base.WalHighMBPerMin, o.WalHighMBPerMin)
	setFloat(&base.WalModerateMBPerMin, o.WalModerateMBPerMin)
	return base
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Resolve loads thresholds from path, or from a discovered file when path is
// empty, falling back to defaults. It returns the file actually used.
func Resolve(path string) (Thresholds, string, error) {
	if path == "" {
		path = FindFile()
	}
	if path == "" {
		return Default(), "", nil
	}

	f, err := LoadFromFile(path)
	if err != nil {
		return Thresholds{}, path, err
	}
	if f == nil {
		return Default(), "", nil
	}

	t := f.Apply(Default())
	if err := t.Validate(); err != nil {
		return Thresholds{}, path, errors.Wrapf(err, "invalid thresholds in %s", path)
	}
	return t, path, nil
}

// Sample returns an override document that sets every threshold to its
// default value.
func Sample() ([]byte, error) {
	d := Default()
	f := File{
		Version: "1",
		Thresholds: Overrides{
			CacheHitPct:         &d.CacheHitPct,
			CacheHitCriticalPct: &d.CacheHitCriticalPct,
			RollbackPct:         &d.RollbackPct,
			SlowQueryMs:         &d.SlowQueryMs,
			QueryCacheHitPct:    &d.QueryCacheHitPct,
			DeadTuplePct:        &d.DeadTuplePct,
			StaleAnalyzeRatio:   &d.StaleAnalyzeRatio,
			SeqScanMin:          &d.SeqScanMin,
			SeqScanLiveTuples:   &d.SeqScanLiveTuples,
			WalHighMBPerMin:     &d.WalHighMBPerMin,
			WalModerateMBPerMin: &d.WalModerateMBPerMin,
		},
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return nil, errors.Wrap(err, "encode thresholds")
	}
	return data, nil
}

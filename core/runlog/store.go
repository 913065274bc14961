// Package runlog keeps an append-only report of completed allocation runs.
package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/socketsched/core/model"
)

// LogRecord captures one completed run.
type LogRecord struct {
	Timestamp     time.Time     `json:"timestamp"`
	RunID         string        `json:"run_id"`
	Algorithm     string        `json:"algorithm"`
	Mode          string        `json:"mode,omitempty"`
	Devices       int           `json:"devices"`
	Sockets       int           `json:"sockets"`
	Slots         int           `json:"slots"`
	MinUsageTime  int           `json:"min_usage_time"`
	AverageUsage  float64       `json:"average_usage"`
	FairnessScore float64       `json:"fairness_score"`
	Bound         float64       `json:"bound,omitempty"`
	RunTime       time.Duration `json:"run_time"`
}

// NewRecord builds the record of res. bound is zero when not computed.
func NewRecord(res *model.RunResult, bound float64) LogRecord {
	ts := res.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return LogRecord{
		Timestamp:     ts,
		RunID:         res.RunID,
		Algorithm:     res.Algorithm,
		Mode:          res.Mode,
		Devices:       len(res.InService),
		Sockets:       res.Sockets,
		Slots:         res.Slots(),
		MinUsageTime:  res.MinUsageTime,
		AverageUsage:  res.AverageUsage,
		FairnessScore: res.FairnessScore,
		Bound:         bound,
		RunTime:       res.RunTime,
	}
}

// LogQuery defines filters for retrieving records. Zero fields match all.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	Algorithm string
	RunID     string
}

// Matches reports whether r passes the filters.
func (q LogQuery) Matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Algorithm != "" && r.Algorithm != q.Algorithm {
		return false
	}
	return q.RunID == "" || r.RunID == q.RunID
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Config selects and configures the run log backend.
type Config struct {
	// Backend is "jsonl", "sqlite" or empty to disable the run log.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Validate checks the backend name and path.
func (c Config) Validate() error {
	switch c.Backend {
	case "":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("runlog: path required for %s backend", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("runlog: unknown backend %q", c.Backend)
	}
}

// NewStore opens the configured store. A disabled run log returns nil.
// A JSONL store rotates when MaxSizeMB is set.
func NewStore(cfg Config) (LogStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	}
	return nil, nil
}

package metrics

import (
	"time"

	"github.com/kilianp07/socketsched/core/model"
)

// RunSummary is the record of one completed allocator run.
type RunSummary struct {
	RunID         string
	Algorithm     string
	Mode          string
	Devices       int
	Sockets       int
	Slots         int
	MinUsageTime  int
	AverageUsage  float64
	FairnessScore float64
	RunTime       time.Duration
	Failed        bool
	Time          time.Time
}

// SummaryFromResult builds the summary of a finished run.
func SummaryFromResult(res *model.RunResult) RunSummary {
	return RunSummary{
		RunID:         res.RunID,
		Algorithm:     res.Algorithm,
		Mode:          res.Mode,
		Devices:       len(res.InService),
		Sockets:       res.Sockets,
		Slots:         res.Slots(),
		MinUsageTime:  res.MinUsageTime,
		AverageUsage:  res.AverageUsage,
		FairnessScore: res.FairnessScore,
		RunTime:       res.RunTime,
		Time:          res.StartedAt,
	}
}

// MetricsSink records allocation runs for observability purposes.
type MetricsSink interface {
	RecordRun(RunSummary) error
}

// SlotStat captures the decisions of one slot.
type SlotStat struct {
	RunID     string
	Algorithm string
	Slot      int
	Deadline  int
	Surplus   int
	Forfeited int
	Denied    int
	InService int
	Time      time.Time
}

// SlotRecorder is implemented by sinks able to record per-slot statistics.
type SlotRecorder interface {
	RecordSlot(SlotStat) error
}

// BoundStat is a relaxation bound computed for an instance.
type BoundStat struct {
	Devices       int
	Sockets       int
	Slots         int
	FairnessBound float64
	Gap           float64
	Time          time.Time
}

// BoundRecorder is implemented by sinks able to record relaxation bounds.
type BoundRecorder interface {
	RecordBound(BoundStat) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordRun(RunSummary) error  { return nil }
func (NopSink) RecordSlot(SlotStat) error   { return nil }
func (NopSink) RecordBound(BoundStat) error { return nil }

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/socketsched/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunSummary{Algorithm: "heuristic", Sockets: 2, MinUsageTime: 10, FairnessScore: 10.9, RunTime: time.Millisecond}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunSummary{Algorithm: "heuristic", Failed: true}); err != nil {
		t.Fatalf("record failed run: %v", err)
	}

	expected := `
# HELP socketsched_fairness_score Fairness score of the last run
# TYPE socketsched_fairness_score gauge
socketsched_fairness_score{algorithm="heuristic",sockets="2"} 10.9
`
	if err := testutil.CollectAndCompare(sink.fairness, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.runs.WithLabelValues("heuristic", "failed")); v != 1 {
		t.Errorf("failed runs = %v", v)
	}
	if v := testutil.ToFloat64(sink.minUsage.WithLabelValues("heuristic", "2")); v != 10 {
		t.Errorf("min usage = %v", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c != 1 {
		t.Errorf("duration series = %d", c)
	}
}

func TestPromSink_RecordSlotAndBound(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = sink.RecordSlot(coremetrics.SlotStat{Algorithm: "heuristic", Deadline: 1, Surplus: 2, Forfeited: 1, Denied: 2})
	}
	_ = sink.RecordBound(coremetrics.BoundStat{Sockets: 3, FairnessBound: 12.25})

	if v := testutil.ToFloat64(sink.grants.WithLabelValues("heuristic", "surplus")); v != 6 {
		t.Errorf("surplus grants = %v", v)
	}
	if v := testutil.ToFloat64(sink.forfeited.WithLabelValues("heuristic")); v != 3 {
		t.Errorf("forfeited = %v", v)
	}
	if v := testutil.ToFloat64(sink.denied.WithLabelValues("heuristic")); v != 6 {
		t.Errorf("denied = %v", v)
	}
	if v := testutil.ToFloat64(sink.bound.WithLabelValues("3")); v != 12.25 {
		t.Errorf("bound = %v", v)
	}
}

func TestPromSink_RegisterTwiceReuses(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = a.RecordRun(coremetrics.RunSummary{Algorithm: "x"})
	if v := testutil.ToFloat64(b.runs.WithLabelValues("x", "ok")); v != 1 {
		t.Fatalf("collectors not shared: %v", v)
	}
}

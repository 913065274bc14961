package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/socketsched/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (b *bodyRecorder) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func TestInfluxSink_RecordRun(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	run := coremetrics.RunSummary{
		RunID:         "r1",
		Algorithm:     "heuristic",
		Mode:          "reference",
		Devices:       3,
		Sockets:       1,
		Slots:         2,
		MinUsageTime:  2,
		AverageUsage:  1,
		FairnessScore: 3,
		RunTime:       1500 * time.Microsecond,
		Time:          now,
	}
	if err := sink.RecordRun(run); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("allocation_run").
		AddTag("algorithm", "heuristic").
		AddTag("run_id", "r1").
		AddTag("mode", "reference").
		AddField("devices", 3).
		AddField("sockets", 1).
		AddField("slots", 2).
		AddField("min_usage_time", 2).
		AddField("average_usage", 1.0).
		AddField("fairness_score", 3.0).
		AddField("run_time_ms", 1.5).
		AddField("failed", false).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if bodies := rec.all(); len(bodies) != 1 || bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordSlotAndBound(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	if err := sink.RecordSlot(coremetrics.SlotStat{RunID: "r1", Algorithm: "heuristic", Slot: 4, Deadline: 1, Surplus: 2, Forfeited: 1, InService: 7, Time: now}); err != nil {
		t.Fatalf("record slot: %v", err)
	}
	if err := sink.RecordBound(coremetrics.BoundStat{Devices: 8, Sockets: 2, Slots: 12, FairnessBound: 12.5, Gap: 0.04, Time: now}); err != nil {
		t.Fatalf("record bound: %v", err)
	}
	slot := write.NewPointWithMeasurement("allocation_slot").
		AddTag("algorithm", "heuristic").
		AddTag("run_id", "r1").
		AddField("slot", 4).
		AddField("deadline", 1).
		AddField("surplus", 2).
		AddField("forfeited", 1).
		AddField("denied", 0).
		AddField("in_service", 7).
		SetTime(now)
	bound := write.NewPointWithMeasurement("allocation_bound").
		AddField("devices", 8).
		AddField("sockets", 2).
		AddField("slots", 12).
		AddField("fairness_bound", 12.5).
		AddField("gap", 0.04).
		SetTime(now)
	bodies := rec.all()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(bodies))
	}
	if bodies[0] != strings.TrimSpace(write.PointToLineProtocol(slot, time.Nanosecond)) {
		t.Errorf("unexpected slot body: %s", bodies[0])
	}
	if bodies[1] != strings.TrimSpace(write.PointToLineProtocol(bound, time.Nanosecond)) {
		t.Errorf("unexpected bound body: %s", bodies[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink on failing health check, got %T", sink)
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

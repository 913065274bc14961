package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/socketsched/core/metrics"
	"github.com/kilianp07/socketsched/infra/logger"
)

// InfluxConfig holds the connection settings of the influx sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes allocation records to InfluxDB with blocking writes.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint without checking it.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance and returns a NopSink when
// the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordRun writes an allocation_run point.
func (s *InfluxSink) RecordRun(r coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_run").
		AddTag("algorithm", r.Algorithm).
		AddTag("run_id", r.RunID)
	if r.Mode != "" {
		p = p.AddTag("mode", r.Mode)
	}
	p = p.AddField("devices", r.Devices).
		AddField("sockets", r.Sockets).
		AddField("slots", r.Slots).
		AddField("min_usage_time", r.MinUsageTime).
		AddField("average_usage", round3(r.AverageUsage)).
		AddField("fairness_score", round3(r.FairnessScore)).
		AddField("run_time_ms", round3(r.RunTime.Seconds()*1000)).
		AddField("failed", r.Failed).
		SetTime(pointTime(r.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSlot writes an allocation_slot point.
func (s *InfluxSink) RecordSlot(st coremetrics.SlotStat) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_slot").
		AddTag("algorithm", st.Algorithm).
		AddTag("run_id", st.RunID).
		AddField("slot", st.Slot).
		AddField("deadline", st.Deadline).
		AddField("surplus", st.Surplus).
		AddField("forfeited", st.Forfeited).
		AddField("denied", st.Denied).
		AddField("in_service", st.InService).
		SetTime(pointTime(st.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBound writes an allocation_bound point.
func (s *InfluxSink) RecordBound(b coremetrics.BoundStat) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_bound").
		AddField("devices", b.Devices).
		AddField("sockets", b.Sockets).
		AddField("slots", b.Slots).
		AddField("fairness_bound", round3(b.FairnessBound)).
		AddField("gap", round3(b.Gap)).
		SetTime(pointTime(b.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

func pointTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

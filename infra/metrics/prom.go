package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/socketsched/core/metrics"
)

// PromSink exposes allocation runs as Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fairness  *prometheus.GaugeVec
	minUsage  *prometheus.GaugeVec
	grants    *prometheus.CounterVec
	forfeited *prometheus.CounterVec
	denied    *prometheus.CounterVec
	bound     *prometheus.GaugeVec
}

// NewPromSink registers the allocation metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg. A nil registerer
// defaults to the global one. Registering twice reuses the existing
// collectors.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socketsched_runs_total",
			Help: "Completed allocation runs",
		}, []string{"algorithm", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socketsched_run_duration_seconds",
			Help:    "Wall time of the allocation loop",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"algorithm"}),
		fairness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "socketsched_fairness_score",
			Help: "Fairness score of the last run",
		}, []string{"algorithm", "sockets"}),
		minUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "socketsched_min_usage_slots",
			Help: "In-service slots of the worst served device in the last run",
		}, []string{"algorithm", "sockets"}),
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socketsched_socket_grants_total",
			Help: "Sockets granted per allocation phase",
		}, []string{"algorithm", "phase"}),
		forfeited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socketsched_sockets_forfeited_total",
			Help: "Sockets left unused because of the battery ceiling",
		}, []string{"algorithm"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socketsched_denied_devices_total",
			Help: "Urgent devices left without a socket",
		}, []string{"algorithm"}),
		bound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "socketsched_fairness_bound",
			Help: "Relaxation bound of the last benchmarked instance",
		}, []string{"sockets"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.fairness, err = register(reg, s.fairness); err != nil {
		return nil, err
	}
	if s.minUsage, err = register(reg, s.minUsage); err != nil {
		return nil, err
	}
	if s.grants, err = register(reg, s.grants); err != nil {
		return nil, err
	}
	if s.forfeited, err = register(reg, s.forfeited); err != nil {
		return nil, err
	}
	if s.denied, err = register(reg, s.denied); err != nil {
		return nil, err
	}
	if s.bound, err = register(reg, s.bound); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counters, duration histogram and score gauges.
func (s *PromSink) RecordRun(r coremetrics.RunSummary) error {
	status := "ok"
	if r.Failed {
		status = "failed"
	}
	s.runs.WithLabelValues(r.Algorithm, status).Inc()
	if r.Failed {
		return nil
	}
	sockets := strconv.Itoa(r.Sockets)
	s.duration.WithLabelValues(r.Algorithm).Observe(r.RunTime.Seconds())
	s.fairness.WithLabelValues(r.Algorithm, sockets).Set(r.FairnessScore)
	s.minUsage.WithLabelValues(r.Algorithm, sockets).Set(float64(r.MinUsageTime))
	return nil
}

// RecordSlot counts grants, forfeits and denials of one slot.
func (s *PromSink) RecordSlot(st coremetrics.SlotStat) error {
	s.grants.WithLabelValues(st.Algorithm, "deadline").Add(float64(st.Deadline))
	s.grants.WithLabelValues(st.Algorithm, "surplus").Add(float64(st.Surplus))
	s.forfeited.WithLabelValues(st.Algorithm).Add(float64(st.Forfeited))
	s.denied.WithLabelValues(st.Algorithm).Add(float64(st.Denied))
	return nil
}

// RecordBound sets the bound gauge for the socket count.
func (s *PromSink) RecordBound(b coremetrics.BoundStat) error {
	s.bound.WithLabelValues(strconv.Itoa(b.Sockets)).Set(b.FairnessBound)
	return nil
}

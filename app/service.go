package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/benchmark"
	"github.com/kilianp07/socketsched/core/bound"
	"github.com/kilianp07/socketsched/core/dispatch"
	"github.com/kilianp07/socketsched/core/events"
	coremetrics "github.com/kilianp07/socketsched/core/metrics"
	"github.com/kilianp07/socketsched/core/model"
	coremon "github.com/kilianp07/socketsched/core/monitoring"
	"github.com/kilianp07/socketsched/core/runlog"
	"github.com/kilianp07/socketsched/infra/logger"
	"github.com/kilianp07/socketsched/infra/metrics"
	"github.com/kilianp07/socketsched/infra/monitoring"
	"github.com/kilianp07/socketsched/infra/mqtt"
	"github.com/kilianp07/socketsched/internal/eventbus"
)

// busBuffer is sized for the per-slot events of a long horizon.
const busBuffer = 1024

// Service wires the configured allocators to metrics, the run log and the
// MQTT plan dispatch.
type Service struct {
	cfg        *config.Config
	allocators []allocation.Allocator
	runner     *benchmark.Runner
	sink       coremetrics.MetricsSink
	store      runlog.LogStore
	bus        *eventbus.Bus
	log        logger.Logger
	cancel     context.CancelFunc
	collected  <-chan struct{}
}

// New builds the service. Metrics collection and the Prometheus endpoint
// run until Close.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.NewWithBuffer(busBuffer)
	allocs, err := allocation.BuildAll(cfg.Allocation.Algorithms,
		allocation.WithEventBus(bus), allocation.WithLogger(logger.New("allocation")))
	if err != nil {
		return nil, fmt.Errorf("allocators: %w", err)
	}
	if len(allocs) == 0 {
		return nil, errors.New("no allocator configured")
	}
	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	runner := benchmark.NewRunner(allocs, benchmark.WithEventBus(bus), benchmark.WithLogger(logger.New("benchmark")))
	runner.Parallelism = cfg.Benchmark.Parallelism

	cctx, cancel := context.WithCancel(ctx)
	svc := &Service{
		cfg:        cfg,
		allocators: allocs,
		runner:     runner,
		sink:       sink,
		store:      store,
		bus:        bus,
		log:        logg,
		cancel:     cancel,
		collected:  metrics.StartEventCollector(cctx, bus, sink),
	}
	if addr := cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(cctx, addr); err != nil {
				logg.Errorf("prom server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "metrics"})
			}
		}()
	}
	return svc, nil
}

// Allocator returns the first configured allocator.
func (s *Service) Allocator() allocation.Allocator { return s.allocators[0] }

// Runner compares every configured allocator.
func (s *Service) Runner() *benchmark.Runner { return s.runner }

// Allocate runs the first configured allocator and reports the run on the
// event bus.
func (s *Service) Allocate(ctx context.Context, inst model.Instance) (*model.RunResult, error) {
	results, err := benchmark.NewRunner(s.allocators[:1],
		benchmark.WithEventBus(s.bus), benchmark.WithLogger(s.log)).Run(ctx, inst)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Bound computes the relaxation bound of inst and reports it with the gap
// of res.
func (s *Service) Bound(inst model.Instance, res *model.RunResult) (float64, error) {
	fb, err := bound.Fairness(inst)
	if err != nil {
		return 0, err
	}
	s.bus.Publish(events.BoundEvent{
		Devices:       len(inst.Devices),
		Sockets:       inst.Sockets,
		Slots:         inst.SlotCount(),
		FairnessBound: fb,
		Gap:           bound.Gap(fb, res.FairnessScore),
	})
	return fb, nil
}

// Log appends the run to the run log. It is a no-op when the run log is
// disabled.
func (s *Service) Log(ctx context.Context, res *model.RunResult, fairnessBound float64) error {
	return s.Append(ctx, runlog.NewRecord(res, fairnessBound))
}

// Append writes a prepared record to the run log.
func (s *Service) Append(ctx context.Context, rec runlog.LogRecord) error {
	if s.store == nil {
		return nil
	}
	return s.store.Append(ctx, rec)
}

// Store returns the run log, nil when disabled.
func (s *Service) Store() runlog.LogStore { return s.store }

// Query reads back logged runs.
func (s *Service) Query(ctx context.Context, q runlog.LogQuery) ([]runlog.LogRecord, error) {
	if s.store == nil {
		return nil, errors.New("run log disabled")
	}
	return s.store.Query(ctx, q)
}

// Publish sends the schedule to the devices over MQTT, slot zero starting at
// start.
func (s *Service) Publish(ctx context.Context, res *model.RunResult, start time.Time) (dispatch.Report, error) {
	if err := s.cfg.MQTT.Validate(); err != nil {
		return dispatch.Report{}, err
	}
	pub, err := mqtt.NewPahoPublisher(s.cfg.MQTT)
	if err != nil {
		return dispatch.Report{}, fmt.Errorf("mqtt publisher: %w", err)
	}
	defer pub.Disconnect()
	d := dispatch.NewPlanDispatcher(pub, s.cfg.Dispatch, logger.New("dispatch"))
	return d.Dispatch(ctx, res, start)
}

// Close drains pending events into the metrics sink and releases the run
// log.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collected
	s.cancel()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

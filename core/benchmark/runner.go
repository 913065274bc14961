package benchmark

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/events"
	"github.com/kilianp07/socketsched/core/logger"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/internal/eventbus"
)

// Runner executes a fixed set of allocators on the same instance.
type Runner struct {
	allocators []allocation.Allocator
	bus        eventbus.EventBus
	log        logger.Logger
	// Parallelism bounds the number of concurrent runs. Zero means one run
	// per allocator.
	Parallelism int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEventBus publishes a RunEvent for every completed run.
func WithEventBus(bus eventbus.EventBus) RunnerOption {
	return func(r *Runner) { r.bus = bus }
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// NewRunner returns a runner over allocs.
func NewRunner(allocs []allocation.Allocator, opts ...RunnerOption) *Runner {
	r := &Runner{allocators: allocs, log: logger.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrNop(r.log)
	return r
}

// Allocators returns the allocators driven by the runner.
func (r *Runner) Allocators() []allocation.Allocator { return r.allocators }

// Run executes every allocator concurrently, each on a private copy of inst.
// Results are returned in allocator order. The first failure cancels the
// remaining runs.
func (r *Runner) Run(ctx context.Context, inst model.Instance) ([]*model.RunResult, error) {
	results := make([]*model.RunResult, len(r.allocators))
	g, gctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}
	for i, a := range r.allocators {
		cp := inst.Clone()
		g.Go(func() error {
			res, err := a.Allocate(gctx, cp)
			r.publish(a, cp, res, err)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Name(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) publish(a allocation.Allocator, inst model.Instance, res *model.RunResult, err error) {
	if err != nil {
		r.log.Errorf("allocator %s failed: %v", a.Name(), err)
	}
	if r.bus == nil {
		return
	}
	ev := events.RunEvent{
		Algorithm: a.Name(),
		Devices:   len(inst.Devices),
		Sockets:   inst.Sockets,
		Slots:     inst.SlotCount(),
		Err:       err,
	}
	if res != nil {
		ev.RunID = res.RunID
		ev.Mode = res.Mode
		ev.MinUsageTime = res.MinUsageTime
		ev.AverageUsage = res.AverageUsage
		ev.FairnessScore = res.FairnessScore
		ev.RunTime = res.RunTime
	}
	r.bus.Publish(ev)
}

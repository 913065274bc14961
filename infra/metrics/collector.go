package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/socketsched/core/events"
	coremetrics "github.com/kilianp07/socketsched/core/metrics"
	"github.com/kilianp07/socketsched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards allocation
// events to sink. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(sink, ev)
			}
		}
	}()
	return done
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) {
	now := time.Now()
	switch e := ev.(type) {
	case events.RunEvent:
		_ = sink.RecordRun(coremetrics.RunSummary{
			RunID:         e.RunID,
			Algorithm:     e.Algorithm,
			Mode:          e.Mode,
			Devices:       e.Devices,
			Sockets:       e.Sockets,
			Slots:         e.Slots,
			MinUsageTime:  e.MinUsageTime,
			AverageUsage:  e.AverageUsage,
			FairnessScore: e.FairnessScore,
			RunTime:       e.RunTime,
			Failed:        e.Err != nil,
			Time:          now,
		})
	case events.SlotEvent:
		if r, ok := sink.(coremetrics.SlotRecorder); ok {
			_ = r.RecordSlot(coremetrics.SlotStat{
				RunID:     e.RunID,
				Algorithm: e.Algorithm,
				Slot:      e.Slot,
				Deadline:  e.Deadline,
				Surplus:   e.Surplus,
				Forfeited: e.Forfeited,
				Denied:    e.Denied,
				InService: e.InService,
				Time:      now,
			})
		}
	case events.BoundEvent:
		if r, ok := sink.(coremetrics.BoundRecorder); ok {
			_ = r.RecordBound(coremetrics.BoundStat{
				Devices:       e.Devices,
				Sockets:       e.Sockets,
				Slots:         e.Slots,
				FairnessBound: e.FairnessBound,
				Gap:           e.Gap,
				Time:          now,
			})
		}
	}
}

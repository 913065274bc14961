// Package dispatch turns a computed schedule into per-slot assignments and
// hands them to a publisher so devices learn when they may use a socket.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/socketsched/core/logger"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/core/mqtt"
)

// Config controls plan dispatch.
type Config struct {
	// AckTimeoutMS is how long to wait for each acknowledgment. Zero
	// disables acknowledgment tracking.
	AckTimeoutMS int `json:"ack_timeout_ms"`
	// OnlyChanges skips assignments identical to the device's previous slot.
	OnlyChanges bool `json:"only_changes"`
}

// Report summarises a dispatch.
type Report struct {
	RunID        string
	Sent         int
	Skipped      int
	Acknowledged int
	// Failures holds the first error seen for each device.
	Failures map[string]error
}

// Failed returns the devices with at least one failure, sorted.
func (r Report) Failed() []string {
	ids := make([]string, 0, len(r.Failures))
	for id := range r.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PlanDispatcher publishes every slot of a RunResult.
type PlanDispatcher struct {
	pub mqtt.Publisher
	cfg Config
	log logger.Logger
}

// NewPlanDispatcher returns a dispatcher publishing through pub.
func NewPlanDispatcher(pub mqtt.Publisher, cfg Config, log logger.Logger) *PlanDispatcher {
	return &PlanDispatcher{pub: pub, cfg: cfg, log: logger.OrNop(log)}
}

// Assignments expands res into slot-major assignments, slot 0 starting at
// start.
func Assignments(res *model.RunResult, start time.Time) []model.Assignment {
	slots := res.Slots()
	slotLen := time.Duration(res.SlotDuration * float64(time.Hour))
	out := make([]model.Assignment, 0, slots*len(res.DeviceIDs))
	for t := 0; t < slots; t++ {
		for i, id := range res.DeviceIDs {
			out = append(out, model.Assignment{
				RunID:     res.RunID,
				DeviceID:  id,
				Slot:      t,
				StartsAt:  start.Add(time.Duration(t) * slotLen),
				Duration:  res.SlotDuration,
				Charging:  res.Charging[i][t],
				InService: res.InService[i][t],
				Battery:   res.Battery[i][t],
			})
		}
	}
	return out
}

// Dispatch publishes the schedule slot by slot. Device failures are collected
// in the report; only a cancelled context aborts the dispatch.
func (d *PlanDispatcher) Dispatch(ctx context.Context, res *model.RunResult, start time.Time) (Report, error) {
	if res == nil {
		return Report{}, errors.New("dispatch: nil result")
	}
	rep := Report{RunID: res.RunID, Failures: make(map[string]error)}
	timeout := time.Duration(d.cfg.AckTimeoutMS) * time.Millisecond
	type state struct{ charging, inService bool }
	last := make(map[string]state, len(res.DeviceIDs))

	for _, a := range Assignments(res, start) {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		cur := state{a.Charging, a.InService}
		if prev, ok := last[a.DeviceID]; ok && d.cfg.OnlyChanges && prev == cur {
			rep.Skipped++
			continue
		}
		last[a.DeviceID] = cur

		cmdID, err := d.pub.PublishAssignment(a)
		if err != nil {
			d.fail(&rep, a, err)
			continue
		}
		rep.Sent++
		if timeout <= 0 {
			continue
		}
		ok, err := d.pub.WaitForAck(cmdID, timeout)
		if err != nil || !ok {
			if err == nil {
				err = mqtt.ErrAckTimeout
			}
			d.fail(&rep, a, fmt.Errorf("ack: %w", err))
			continue
		}
		rep.Acknowledged++
	}
	d.log.Infof("dispatched run %s: %d sent, %d skipped, %d acknowledged, %d devices failed",
		rep.RunID, rep.Sent, rep.Skipped, rep.Acknowledged, len(rep.Failures))
	return rep, nil
}

func (d *PlanDispatcher) fail(rep *Report, a model.Assignment, err error) {
	d.log.Warnf("device %s slot %d: %v", a.DeviceID, a.Slot, err)
	if _, seen := rep.Failures[a.DeviceID]; !seen {
		rep.Failures[a.DeviceID] = err
	}
}

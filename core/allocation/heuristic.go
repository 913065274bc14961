package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/socketsched/core/events"
	"github.com/kilianp07/socketsched/core/logger"
	"github.com/kilianp07/socketsched/core/model"
)

// Heuristic is the greedy slot-by-slot socket allocator.
type Heuristic struct {
	cfg Config
	options
}

// NewHeuristic returns a heuristic allocator. An empty mode selects
// ModeReference.
func NewHeuristic(cfg Config, opts ...Option) *Heuristic {
	cfg.SetDefaults()
	h := &Heuristic{cfg: cfg}
	h.applyOptions(opts...)
	return h
}

// Name identifies the allocator and its mode in results and metrics.
func (h *Heuristic) Name() string {
	if h.cfg.Mode == ModeReference {
		return "heuristic"
	}
	return "heuristic-" + string(h.cfg.Mode)
}

// Allocate simulates the whole horizon and returns the schedule with its
// fairness metrics. It only fails for invalid instances, or for invariant
// violations when strict invariants are disabled.
func (h *Heuristic) Allocate(ctx context.Context, inst model.Instance) (*model.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	log := logger.OrNop(h.log)
	n, slots, dt := len(inst.Devices), inst.SlotCount(), inst.SlotDuration

	res := &model.RunResult{
		RunID:        uuid.NewString(),
		Algorithm:    h.Name(),
		Mode:         string(h.cfg.Mode),
		DeviceIDs:    inst.DeviceIDs(),
		Sockets:      inst.Sockets,
		SlotDuration: dt,
		InService:    boolMatrix(n, slots),
		Charging:     boolMatrix(n, slots),
		Battery:      floatMatrix(n, slots+1),
		StartedAt:    time.Now(),
	}
	for i, d := range inst.Devices {
		res.Battery[i][0] = d.InitialBattery
	}

	start := time.Now()
	usage := make([]int, n)
	battery := make([]float64, n)
	for t := 0; t < slots; t++ {
		for i := range battery {
			battery[i] = res.Battery[i][t]
		}
		forecast := Forecast(battery, inst.Devices, dt)
		dec := newSlotDecision(t, forecast)
		dec = allocateDeadline(dec, forecast, usage, inst.Devices, inst.Sockets, h.cfg.Mode.forceDenied())
		if remaining := inst.Sockets - dec.Granted(); remaining > 0 {
			dec = distributeSurplus(dec, forecast, inst.Devices, remaining, dt)
		}
		if err := checkDecision(dec, inst.Sockets); err != nil {
			if verr := h.violation(err); verr != nil {
				return nil, verr
			}
		}
		h.record(res, dec, usage, inst.Devices, dt)
		if err := checkInitialBattery(res.Battery, inst.Devices); err != nil {
			if verr := h.violation(err); verr != nil {
				return nil, verr
			}
		}

		if len(dec.Denied) > 0 {
			log.Debugw("urgent devices denied a socket", map[string]any{
				"run_id": res.RunID,
				"slot":   t,
				"denied": len(dec.Denied),
			})
		}
		h.publishSlot(res, dec)
	}
	res.RunTime = time.Since(start)

	sc := Score(res.InService)
	res.Usage = sc.Usage
	res.MinUsageTime = sc.MinUsageTime
	res.AverageUsage = sc.AverageUsage
	res.FairnessScore = sc.FairnessScore
	log.Infof("run %s: %d devices, %d sockets, %d slots, fairness %.3f", res.RunID, n, inst.Sockets, slots, res.FairnessScore)
	return res, nil
}

// record writes the decision of slot t into the run matrices and derives the
// battery levels at the start of slot t+1.
func (h *Heuristic) record(res *model.RunResult, dec SlotDecision, usage []int, devices []model.Device, dt float64) {
	t := dec.Slot
	for i, d := range devices {
		res.Charging[i][t] = dec.Charging[i]
		res.InService[i][t] = dec.InService[i]
		if dec.InService[i] {
			usage[i]++
		}
		next := NextBattery(res.Battery[i][t], dec.Charging[i], dec.InService[i], d, dt)
		if h.cfg.Mode.clamp() {
			next = clampBattery(next)
		}
		res.Battery[i][t+1] = next
	}
}

func (h *Heuristic) violation(err error) error {
	if h.cfg.StrictInvariants {
		panic(err)
	}
	return fmt.Errorf("heuristic: %w", err)
}

func (h *Heuristic) publishSlot(res *model.RunResult, dec SlotDecision) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(events.SlotEvent{
		RunID:     res.RunID,
		Algorithm: res.Algorithm,
		Slot:      dec.Slot,
		Urgent:    len(dec.Deadline) + len(dec.Denied),
		Deadline:  len(dec.Deadline),
		Surplus:   len(dec.Surplus),
		Forfeited: dec.Forfeited,
		Denied:    len(dec.Denied),
		InService: dec.InServiceCount(),
	})
}

func boolMatrix(rows, cols int) [][]bool {
	m := make([][]bool, rows)
	for i := range m {
		m[i] = make([]bool, cols)
	}
	return m
}

func floatMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

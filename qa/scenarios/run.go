package scenarios

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/dispatch"
	"github.com/kilianp07/socketsched/core/events"
	"github.com/kilianp07/socketsched/core/factory"
	"github.com/kilianp07/socketsched/infra/logger"
	"github.com/kilianp07/socketsched/infra/mqtt"
	"github.com/kilianp07/socketsched/internal/eventbus"
)

// RunScenario allocates the scenario instance in strict mode, checks the
// expected outcome and dispatches the plan to a mock publisher.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	bus := eventbus.New()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	alloc, err := allocation.Build(factory.ModuleConfig{
		Type: "heuristic",
		Conf: map[string]any{"mode": sc.Mode, "strict_invariants": true},
	}, allocation.WithEventBus(bus), allocation.WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	inst := sc.Instance()
	res, err := alloc.Allocate(context.Background(), inst)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	exp := sc.Expected
	if exp.Charging != nil && !reflect.DeepEqual(exp.Charging, res.Charging) {
		t.Errorf("charging: want %v got %v", exp.Charging, res.Charging)
	}
	if exp.InService != nil && !reflect.DeepEqual(exp.InService, res.InService) {
		t.Errorf("in service: want %v got %v", exp.InService, res.InService)
	}
	if exp.Battery != nil && !reflect.DeepEqual(exp.Battery, res.Battery) {
		t.Errorf("battery: want %v got %v", exp.Battery, res.Battery)
	}
	if exp.MinUsageTime != nil && *exp.MinUsageTime != res.MinUsageTime {
		t.Errorf("min usage: want %d got %d", *exp.MinUsageTime, res.MinUsageTime)
	}
	if exp.FairnessScore != nil && *exp.FairnessScore != res.FairnessScore {
		t.Errorf("fairness: want %v got %v", *exp.FairnessScore, res.FairnessScore)
	}
	if exp.Forfeited != nil {
		forfeited := 0
		for range res.Slots() {
			if ev, ok := (<-sub).(events.SlotEvent); ok {
				forfeited += ev.Forfeited
			}
		}
		if forfeited != *exp.Forfeited {
			t.Errorf("forfeited: want %d got %d", *exp.Forfeited, forfeited)
		}
	}

	pub := mqtt.NewMockPublisher()
	d := dispatch.NewPlanDispatcher(pub, dispatch.Config{AckTimeoutMS: 10}, logger.NopLogger{})
	rep, err := d.Dispatch(context.Background(), res, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if want := len(inst.Devices) * res.Slots(); rep.Sent != want || rep.Acknowledged != want {
		t.Errorf("dispatch: want %d sent and acked, got %+v", want, rep)
	}
}

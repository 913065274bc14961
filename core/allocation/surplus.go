package allocation

import (
	"sort"

	"github.com/kilianp07/socketsched/core/model"
)

// distributeSurplus hands up to remaining sockets to devices that are not
// charging yet, most depleted first. A candidate whose level after the slot
// would exceed the ceiling forfeits its socket, which is left unused.
func distributeSurplus(dec SlotDecision, forecast []float64, devices []model.Device, remaining int, dt float64) SlotDecision {
	if remaining <= 0 {
		return dec
	}
	dec = dec.clone()
	var candidates []int
	for i, charging := range dec.Charging {
		if !charging {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return forecast[candidates[a]] < forecast[candidates[b]]
	})
	if len(candidates) > remaining {
		candidates = candidates[:remaining]
	}
	for _, i := range candidates {
		d := devices[i]
		if forecast[i]+d.RechargeRate*dt+d.DischargeRate*dt > batteryCeiling {
			dec.Forfeited++
			continue
		}
		dec.grant(i)
		dec.Surplus = append(dec.Surplus, i)
	}
	return dec
}

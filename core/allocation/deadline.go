package allocation

import (
	"sort"

	"github.com/kilianp07/socketsched/core/model"
)

// urgency orders devices competing for fewer sockets than there are urgent
// devices: least served first, then most depleted, then worst net rate.
type urgency struct {
	usage    int
	forecast float64
	netRate  float64
}

func (u urgency) less(o urgency) bool {
	if u.usage != o.usage {
		return u.usage < o.usage
	}
	if u.forecast != o.forecast {
		return u.forecast < o.forecast
	}
	return u.netRate < o.netRate
}

// allocateDeadline grants sockets to devices whose forecast is negative.
// usage[i] is the number of slots device i has been in service so far. When
// the urgent devices outnumber the sockets they are ranked by urgency and the
// losers are recorded as denied; forceDenied keeps them in service anyway.
func allocateDeadline(dec SlotDecision, forecast []float64, usage []int, devices []model.Device, sockets int, forceDenied bool) SlotDecision {
	dec = dec.clone()
	var urgent []int
	for i, f := range forecast {
		if f < 0 {
			urgent = append(urgent, i)
		}
	}
	if len(urgent) > sockets {
		keys := make([]urgency, len(forecast))
		for _, i := range urgent {
			keys[i] = urgency{usage: usage[i], forecast: forecast[i], netRate: devices[i].NetRate()}
		}
		sort.SliceStable(urgent, func(a, b int) bool {
			return keys[urgent[a]].less(keys[urgent[b]])
		})
	}
	for rank, i := range urgent {
		if rank < sockets {
			dec.grant(i)
			dec.Deadline = append(dec.Deadline, i)
			continue
		}
		dec.Denied = append(dec.Denied, i)
		if forceDenied {
			dec.InService[i] = true
		}
	}
	return dec
}

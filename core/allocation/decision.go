package allocation

// SlotDecision is the outcome of one slot. It is passed by value between the
// allocation phases; each phase returns an updated copy and only the
// simulation loop writes it into the run matrices.
type SlotDecision struct {
	Slot      int
	Charging  []bool
	InService []bool
	// Deadline lists devices granted a socket because their forecast
	// crossed zero, in grant order.
	Deadline []int
	// Denied lists urgent devices left without a socket.
	Denied []int
	// Surplus lists devices granted one of the remaining sockets.
	Surplus []int
	// Forfeited counts remaining sockets left unused because the candidate
	// would have exceeded the battery ceiling.
	Forfeited int
}

// newSlotDecision starts a slot with nobody charging and every device whose
// forecast is non-negative in service.
func newSlotDecision(slot int, forecast []float64) SlotDecision {
	dec := SlotDecision{
		Slot:      slot,
		Charging:  make([]bool, len(forecast)),
		InService: make([]bool, len(forecast)),
	}
	for i, f := range forecast {
		dec.InService[i] = f >= 0
	}
	return dec
}

// Granted returns the number of sockets handed out in this slot.
func (d SlotDecision) Granted() int { return len(d.Deadline) + len(d.Surplus) }

// InServiceCount returns the number of devices in service.
func (d SlotDecision) InServiceCount() int {
	n := 0
	for _, u := range d.InService {
		if u {
			n++
		}
	}
	return n
}

func (d SlotDecision) clone() SlotDecision {
	cp := d
	cp.Charging = append([]bool(nil), d.Charging...)
	cp.InService = append([]bool(nil), d.InService...)
	cp.Deadline = append([]int(nil), d.Deadline...)
	cp.Denied = append([]int(nil), d.Denied...)
	cp.Surplus = append([]int(nil), d.Surplus...)
	return cp
}

func (d *SlotDecision) grant(i int) {
	d.Charging[i] = true
	d.InService[i] = true
}

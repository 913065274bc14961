package allocation

import (
	"errors"
	"fmt"

	"github.com/kilianp07/socketsched/core/model"
)

// ErrInvariant reports an internal inconsistency in a slot decision. It is
// a programming defect, never a property of the input instance.
var ErrInvariant = errors.New("allocation invariant violated")

// checkDecision verifies the capacity invariant and that no device was
// granted more than one socket.
func checkDecision(dec SlotDecision, sockets int) error {
	if g := dec.Granted(); g > sockets {
		return fmt.Errorf("%w: slot %d granted %d sockets, capacity %d", ErrInvariant, dec.Slot, g, sockets)
	}
	seen := make(map[int]bool, dec.Granted())
	for _, list := range [][]int{dec.Deadline, dec.Surplus} {
		for _, i := range list {
			if seen[i] {
				return fmt.Errorf("%w: slot %d granted device %d twice", ErrInvariant, dec.Slot, i)
			}
			seen[i] = true
			if !dec.Charging[i] || !dec.InService[i] {
				return fmt.Errorf("%w: slot %d granted device %d without charging and in-service flags", ErrInvariant, dec.Slot, i)
			}
		}
	}
	charging := 0
	for _, c := range dec.Charging {
		if c {
			charging++
		}
	}
	if charging != dec.Granted() {
		return fmt.Errorf("%w: slot %d has %d charging devices for %d grants", ErrInvariant, dec.Slot, charging, dec.Granted())
	}
	return nil
}

// checkInitialBattery verifies that the first battery column still holds the
// initial levels.
func checkInitialBattery(battery [][]float64, devices []model.Device) error {
	for i, d := range devices {
		if battery[i][0] != d.InitialBattery {
			return fmt.Errorf("%w: device %d starts at %v, initial battery %v", ErrInvariant, i, battery[i][0], d.InitialBattery)
		}
	}
	return nil
}

package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInstance is returned when an instance cannot be scheduled.
var ErrInvalidInstance = errors.New("invalid instance")

// slotEpsilon absorbs floating point noise when dividing the horizon into slots.
const slotEpsilon = 1e-9

// Upper limits on the schedule size. Every run allocates three matrices of
// devices x slots cells.
const (
	MaxSlots = 1 << 20
	MaxCells = 1 << 24
)

// Instance describes one allocation problem: the device population, the
// number of sockets shared by all devices and the discretised time horizon.
type Instance struct {
	Devices      []Device `json:"devices" yaml:"devices"`
	Sockets      int      `json:"sockets" yaml:"sockets"`
	TotalTime    float64  `json:"total_time" yaml:"total_time"`       // hours
	SlotDuration float64  `json:"slot_duration" yaml:"slot_duration"` // hours
}

// SlotCount returns ceil(TotalTime / SlotDuration). It returns 0 when the
// horizon is not positive or exceeds MaxSlots.
func (in Instance) SlotCount() int {
	if in.SlotDuration <= 0 || in.TotalTime <= 0 {
		return 0
	}
	ratio := math.Ceil(in.TotalTime/in.SlotDuration - slotEpsilon)
	if math.IsNaN(ratio) || ratio > MaxSlots {
		return 0
	}
	return int(ratio)
}

// Validate rejects instances the allocator cannot run on. An empty device
// list and a zero socket count are valid.
func (in Instance) Validate() error {
	if in.Sockets < 0 {
		return fmt.Errorf("%w: socket count must not be negative, got %d", ErrInvalidInstance, in.Sockets)
	}
	if !(in.TotalTime > 0) || math.IsInf(in.TotalTime, 0) {
		return fmt.Errorf("%w: total time must be positive, got %v", ErrInvalidInstance, in.TotalTime)
	}
	if !(in.SlotDuration > 0) || math.IsInf(in.SlotDuration, 0) {
		return fmt.Errorf("%w: slot duration must be positive, got %v", ErrInvalidInstance, in.SlotDuration)
	}
	ratio := math.Ceil(in.TotalTime/in.SlotDuration - slotEpsilon)
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) || ratio > MaxSlots {
		return fmt.Errorf("%w: horizon %v/%v exceeds %d slots", ErrInvalidInstance, in.TotalTime, in.SlotDuration, MaxSlots)
	}
	if cells := len(in.Devices) * int(ratio); cells > MaxCells {
		return fmt.Errorf("%w: %d devices over %d slots exceed %d schedule cells", ErrInvalidInstance, len(in.Devices), int(ratio), MaxCells)
	}
	for i, d := range in.Devices {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: device %d (%s): %v", ErrInvalidInstance, i, d.ID, err)
		}
	}
	return nil
}

// Clone returns a deep copy so concurrent runs never share device slices.
func (in Instance) Clone() Instance {
	cp := in
	cp.Devices = make([]Device, len(in.Devices))
	copy(cp.Devices, in.Devices)
	return cp
}

// DeviceIDs returns the device identifiers, substituting the position for
// devices without an ID.
func (in Instance) DeviceIDs() []string {
	ids := make([]string, len(in.Devices))
	for i, d := range in.Devices {
		if d.ID == "" {
			ids[i] = fmt.Sprintf("dev%04d", i+1)
			continue
		}
		ids[i] = d.ID
	}
	return ids
}

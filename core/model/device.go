package model

import (
	"fmt"
	"math"
)

// Device represents a battery-powered device competing for charging sockets.
type Device struct {
	ID             string  `json:"id" yaml:"id"`
	RechargeRate   float64 `json:"recharge_rate" yaml:"recharge_rate"`     // %/hour gained while charging
	DischargeRate  float64 `json:"discharge_rate" yaml:"discharge_rate"`   // %/hour lost while in service
	InitialBattery float64 `json:"initial_battery" yaml:"initial_battery"` // % in [0,100]
}

// Validate checks that the device parameters are physically meaningful.
func (d Device) Validate() error {
	if !(d.RechargeRate > 0) || math.IsInf(d.RechargeRate, 0) {
		return fmt.Errorf("recharge rate must be positive, got %v", d.RechargeRate)
	}
	if !(d.DischargeRate > 0) || math.IsInf(d.DischargeRate, 0) {
		return fmt.Errorf("discharge rate must be positive, got %v", d.DischargeRate)
	}
	if !(d.InitialBattery >= 0 && d.InitialBattery <= 100) {
		return fmt.Errorf("initial battery must be within [0,100], got %v", d.InitialBattery)
	}
	return nil
}

// NetRate returns the recharge rate minus the discharge rate. Devices with a
// lower net rate recover more slowly from depletion.
func (d Device) NetRate() float64 {
	return d.RechargeRate - d.DischargeRate
}

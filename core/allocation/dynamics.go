package allocation

import "github.com/kilianp07/socketsched/core/model"

const (
	batteryFloor   = 0.0
	batteryCeiling = 100.0
)

// NextBattery returns the battery level after one slot:
//
//	b + Y·r·dt + Y·U·d·dt − U·d·dt
//
// A charging device in service recharges and discharges over the slot, an
// idle device in service only discharges and a device neither charging nor in
// service keeps its level. The result is not clamped.
func NextBattery(b float64, charging, inService bool, d model.Device, dt float64) float64 {
	y, u := indicator(charging), indicator(inService)
	return b + y*d.RechargeRate*dt + y*u*d.DischargeRate*dt - u*d.DischargeRate*dt
}

// Forecast projects every device one slot ahead under the assumption that it
// does not charge. battery[i] is the current level of devices[i].
func Forecast(battery []float64, devices []model.Device, dt float64) []float64 {
	out := make([]float64, len(battery))
	for i, b := range battery {
		out[i] = b - devices[i].DischargeRate*dt
	}
	return out
}

func clampBattery(b float64) float64 {
	if b < batteryFloor {
		return batteryFloor
	}
	if b > batteryCeiling {
		return batteryCeiling
	}
	return b
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

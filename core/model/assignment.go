package model

import "time"

// Assignment is the per-slot order sent to a device: whether it may occupy a
// socket and whether it is expected to be in service.
type Assignment struct {
	RunID     string    `json:"run_id"`
	DeviceID  string    `json:"device_id"`
	Slot      int       `json:"slot"`
	StartsAt  time.Time `json:"starts_at"`
	Duration  float64   `json:"duration_hours"`
	Charging  bool      `json:"charging"`
	InService bool      `json:"in_service"`
	Battery   float64   `json:"battery"`
}

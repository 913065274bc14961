package model

import "time"

// RunResult is the schedule produced by an allocator together with its
// fairness metrics. It is created once at the end of a run and must be
// treated as read-only by consumers.
type RunResult struct {
	RunID     string   `json:"run_id"`
	Algorithm string   `json:"algorithm"`
	Mode      string   `json:"mode,omitempty"`
	DeviceIDs []string `json:"device_ids"`
	Sockets   int      `json:"sockets"`
	// SlotDuration is the slot length in hours.
	SlotDuration float64 `json:"slot_duration"`

	// InService is U: InService[i][t] reports device i operational in slot t.
	InService [][]bool `json:"in_service"`
	// Charging is Y: Charging[i][t] reports device i holding a socket in slot t.
	Charging [][]bool `json:"charging"`
	// Battery is B with one column more than the slot count.
	Battery [][]float64 `json:"battery"`

	Usage         []int   `json:"usage"`
	MinUsageTime  int     `json:"min_usage_time"`
	AverageUsage  float64 `json:"average_usage"`
	FairnessScore float64 `json:"fairness_score"`

	StartedAt time.Time     `json:"started_at"`
	BuildTime time.Duration `json:"build_time"`
	RunTime   time.Duration `json:"run_time"`
}

// Slots returns the number of slots covered by the schedule.
func (r *RunResult) Slots() int {
	if r == nil || len(r.Charging) == 0 {
		return 0
	}
	return len(r.Charging[0])
}

// SocketsUsed returns how many sockets are occupied during slot t.
func (r *RunResult) SocketsUsed(t int) int {
	n := 0
	for i := range r.Charging {
		if r.Charging[i][t] {
			n++
		}
	}
	return n
}

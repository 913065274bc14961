package events

import "time"

// RunEvent is published when an allocator finished a run.
type RunEvent struct {
	RunID         string
	Algorithm     string
	Mode          string
	Devices       int
	Sockets       int
	Slots         int
	MinUsageTime  int
	AverageUsage  float64
	FairnessScore float64
	RunTime       time.Duration
	Err           error
}

// BoundEvent is published when a relaxation bound has been computed.
type BoundEvent struct {
	Devices       int
	Sockets       int
	Slots         int
	FairnessBound float64
	Gap           float64
}

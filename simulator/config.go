package simulator

import (
	"fmt"
	"time"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker      string
	TopicPrefix string
	AckLatency  time.Duration
	DropRate    float64
	// Seed drives the ack drop decisions.
	Seed int64
}

func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "socket"
	}
}

func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("simulator: broker is required")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("simulator: drop rate must lie in [0,1], got %v", c.DropRate)
	}
	if c.AckLatency < 0 {
		return fmt.Errorf("simulator: ack latency must not be negative")
	}
	return nil
}

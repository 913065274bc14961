package allocation

import "fmt"

// Mode selects how the heuristic treats devices that run out of battery.
type Mode string

const (
	// ModeReference forces urgent devices that were denied a socket into the
	// in-service state and does not clamp battery levels.
	ModeReference Mode = "reference"
	// ModeParity leaves denied devices out of service without clamping.
	ModeParity Mode = "parity"
	// ModeClamped leaves denied devices out of service and clamps battery
	// levels to [0,100].
	ModeClamped Mode = "clamped"
)

// Config defines heuristic settings loaded from configuration.
type Config struct {
	Mode Mode `json:"mode"`
	// StrictInvariants panics on an internal invariant violation instead of
	// returning an error.
	StrictInvariants bool `json:"strict_invariants"`
}

// SetDefaults applies the reference mode when none is configured.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeReference
	}
}

// Validate checks that the mode is known.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeReference, ModeParity, ModeClamped:
		return nil
	default:
		return fmt.Errorf("unknown allocation mode %q", c.Mode)
	}
}

func (m Mode) forceDenied() bool { return m == ModeReference || m == "" }

func (m Mode) clamp() bool { return m == ModeClamped }

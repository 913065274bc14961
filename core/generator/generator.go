// Package generator builds random allocation instances from an explicit seed.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/socketsched/core/model"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) valid() bool { return r.Min <= r.Max }

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Config controls instance generation.
type Config struct {
	Seed           int64   `json:"seed"`
	MinDevices     int     `json:"min_devices"`
	MaxDevices     int     `json:"max_devices"`
	RechargeRate   Range   `json:"recharge_rate"`
	DischargeRate  Range   `json:"discharge_rate"`
	InitialBattery Range   `json:"initial_battery"`
	TotalTime      float64 `json:"total_time"`
	SlotDuration   float64 `json:"slot_duration"`
}

// SetDefaults fills zero values with the reference experiment settings.
func (c *Config) SetDefaults() {
	if c.MinDevices == 0 {
		c.MinDevices = 2
	}
	if c.MaxDevices == 0 {
		c.MaxDevices = 25
	}
	if c.RechargeRate == (Range{}) {
		c.RechargeRate = Range{Min: 25, Max: 50}
	}
	if c.DischargeRate == (Range{}) {
		c.DischargeRate = Range{Min: 20, Max: 35}
	}
	if c.InitialBattery == (Range{}) {
		c.InitialBattery = Range{Min: 10, Max: 80}
	}
	if c.TotalTime == 0 {
		c.TotalTime = 12
	}
	if c.SlotDuration == 0 {
		c.SlotDuration = 1
	}
}

// Validate rejects ranges that cannot produce a valid instance.
func (c Config) Validate() error {
	if c.MinDevices < 0 || c.MaxDevices < c.MinDevices {
		return fmt.Errorf("generator: invalid device range [%d,%d]", c.MinDevices, c.MaxDevices)
	}
	if !c.RechargeRate.valid() || c.RechargeRate.Min <= 0 {
		return fmt.Errorf("generator: recharge rate range must be positive and ordered")
	}
	if !c.DischargeRate.valid() || c.DischargeRate.Min <= 0 {
		return fmt.Errorf("generator: discharge rate range must be positive and ordered")
	}
	if !c.InitialBattery.valid() || c.InitialBattery.Min < 0 || c.InitialBattery.Max > 100 {
		return fmt.Errorf("generator: initial battery range must lie in [0,100]")
	}
	if c.TotalTime <= 0 || c.SlotDuration <= 0 {
		return fmt.Errorf("generator: horizon and slot duration must be positive")
	}
	return nil
}

// Generator draws instances from its own random source. It is not safe for
// concurrent use.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a generator seeded with cfg.Seed.
func New(cfg Config) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Devices draws n devices with IDs dev0001, dev0002, ...
func (g *Generator) Devices(n int) []model.Device {
	devices := make([]model.Device, n)
	for i := range devices {
		devices[i] = model.Device{
			ID:             fmt.Sprintf("dev%04d", i+1),
			RechargeRate:   g.cfg.RechargeRate.sample(g.rng),
			DischargeRate:  g.cfg.DischargeRate.sample(g.rng),
			InitialBattery: g.cfg.InitialBattery.sample(g.rng),
		}
	}
	return devices
}

// Instance draws n devices sharing the given number of sockets over the
// configured horizon.
func (g *Generator) Instance(n, sockets int) model.Instance {
	return model.Instance{
		Devices:      g.Devices(n),
		Sockets:      sockets,
		TotalTime:    g.cfg.TotalTime,
		SlotDuration: g.cfg.SlotDuration,
	}
}

// Random draws the device count in [MinDevices, MaxDevices] and the socket
// count in [1, max(1, N/4)].
func (g *Generator) Random() model.Instance {
	n := g.cfg.MinDevices + g.rng.Intn(g.cfg.MaxDevices-g.cfg.MinDevices+1)
	maxSockets := n / 4
	if maxSockets < 1 {
		maxSockets = 1
	}
	sockets := 1 + g.rng.Intn(maxSockets)
	return g.Instance(n, sockets)
}

// Config returns the effective configuration.
func (g *Generator) Config() Config { return g.cfg }

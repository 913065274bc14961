package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/socketsched/core/bound"
	"github.com/kilianp07/socketsched/core/events"
	"github.com/kilianp07/socketsched/core/generator"
	"github.com/kilianp07/socketsched/core/model"
)

// Config describes a benchmark sweep.
type Config struct {
	// Devices is the fleet size. Zero draws a random size per seed.
	Devices int `json:"devices"`
	// Sockets lists the socket counts tried on every generated instance.
	// Empty uses the socket count drawn by the generator.
	Sockets []int `json:"sockets"`
	// Seeds is the number of instances generated, seeded Seed, Seed+1, ...
	Seeds       int  `json:"seeds"`
	Bound       bool `json:"bound"`
	Parallelism int  `json:"parallelism"`
}

// SetDefaults applies a single seed.
func (c *Config) SetDefaults() {
	if c.Seeds <= 0 {
		c.Seeds = 1
	}
}

// Validate rejects negative sizes.
func (c Config) Validate() error {
	if c.Devices < 0 {
		return fmt.Errorf("benchmark: devices must not be negative")
	}
	for _, s := range c.Sockets {
		if s < 0 {
			return fmt.Errorf("benchmark: socket count must not be negative, got %d", s)
		}
	}
	return nil
}

// Row is the outcome of one allocator on one instance.
type Row struct {
	RunID         string        `json:"run_id"`
	Algorithm     string        `json:"algorithm"`
	Seed          int64         `json:"seed"`
	Devices       int           `json:"devices"`
	Sockets       int           `json:"sockets"`
	Slots         int           `json:"slots"`
	MinUsageTime  int           `json:"min_usage_time"`
	AverageUsage  float64       `json:"average_usage"`
	FairnessScore float64       `json:"fairness_score"`
	Bound         float64       `json:"bound,omitempty"`
	Gap           float64       `json:"gap,omitempty"`
	RunTime       time.Duration `json:"run_time"`
}

// Sweep generates cfg.Seeds instances and runs every allocator on each of
// them for every configured socket count.
func (r *Runner) Sweep(ctx context.Context, gen generator.Config, cfg Config) ([]Row, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	run := r
	if cfg.Parallelism > 0 {
		limited := *r
		limited.Parallelism = cfg.Parallelism
		run = &limited
	}
	var rows []Row
	for k := 0; k < cfg.Seeds; k++ {
		seedCfg := gen
		seedCfg.Seed = gen.Seed + int64(k)
		g, err := generator.New(seedCfg)
		if err != nil {
			return nil, err
		}
		var base model.Instance
		if cfg.Devices > 0 {
			base = g.Instance(cfg.Devices, 0)
		} else {
			base = g.Random()
		}
		sockets := cfg.Sockets
		if len(sockets) == 0 {
			sockets = []int{base.Sockets}
		}
		for _, s := range sockets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			inst := base.Clone()
			inst.Sockets = s
			out, err := run.sweepOne(ctx, inst, seedCfg.Seed, cfg.Bound)
			if err != nil {
				return nil, err
			}
			rows = append(rows, out...)
		}
	}
	r.log.Infof("sweep finished: %d rows", len(rows))
	return rows, nil
}

func (r *Runner) sweepOne(ctx context.Context, inst model.Instance, seed int64, withBound bool) ([]Row, error) {
	results, err := r.Run(ctx, inst)
	if err != nil {
		return nil, err
	}
	var fb float64
	if withBound {
		if fb, err = bound.Fairness(inst); err != nil {
			return nil, err
		}
	}
	rows := make([]Row, len(results))
	for i, res := range results {
		rows[i] = Row{
			RunID:         res.RunID,
			Algorithm:     res.Algorithm,
			Seed:          seed,
			Devices:       len(inst.Devices),
			Sockets:       inst.Sockets,
			Slots:         inst.SlotCount(),
			MinUsageTime:  res.MinUsageTime,
			AverageUsage:  res.AverageUsage,
			FairnessScore: res.FairnessScore,
			RunTime:       res.RunTime,
		}
		if withBound {
			rows[i].Bound = fb
			rows[i].Gap = bound.Gap(fb, res.FairnessScore)
		}
	}
	if withBound && r.bus != nil && len(rows) > 0 {
		r.bus.Publish(events.BoundEvent{
			Devices:       len(inst.Devices),
			Sockets:       inst.Sockets,
			Slots:         inst.SlotCount(),
			FairnessBound: fb,
			Gap:           rows[0].Gap,
		})
	}
	return rows, nil
}

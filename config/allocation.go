package config

import (
	"fmt"

	"github.com/kilianp07/socketsched/core/factory"
)

// AllocationConfig lists the allocators to build. The first one is used by
// single runs; benchmarks compare all of them.
type AllocationConfig struct {
	Algorithms []factory.ModuleConfig `json:"algorithms"`
}

// SetDefaults configures the reference heuristic when no algorithm is
// listed. strict enables invariant panics on algorithms that leave the
// setting unspecified.
func (c *AllocationConfig) SetDefaults(strict bool) {
	if len(c.Algorithms) == 0 {
		c.Algorithms = []factory.ModuleConfig{{Type: "heuristic"}}
	}
	for i := range c.Algorithms {
		if c.Algorithms[i].Conf == nil {
			c.Algorithms[i].Conf = map[string]any{}
		}
		if _, ok := c.Algorithms[i].Conf["strict_invariants"]; !ok {
			c.Algorithms[i].Conf["strict_invariants"] = strict
		}
	}
}

func (c AllocationConfig) Validate() error {
	for i, a := range c.Algorithms {
		if a.Type == "" {
			return fmt.Errorf("algorithm %d: type is required", i)
		}
	}
	return nil
}

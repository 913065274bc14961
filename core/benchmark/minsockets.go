package benchmark

import (
	"context"
	"fmt"

	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/generator"
	"github.com/kilianp07/socketsched/core/model"
)

// FullService reports whether every device was in service during every slot.
func FullService(res *model.RunResult) bool {
	return res.MinUsageTime == res.Slots() && res.AverageUsage == 1
}

// MinSockets returns the smallest socket count for which alloc keeps every
// device in service on all seeds instances of n devices. Socket counts are
// tried in increasing order up to n.
func MinSockets(ctx context.Context, alloc allocation.Allocator, gen generator.Config, n, seeds int) (int, error) {
	if n < 0 || seeds <= 0 {
		return 0, fmt.Errorf("benchmark: need n >= 0 and at least one seed")
	}
	bases := make([]model.Instance, seeds)
	for k := range bases {
		cfg := gen
		cfg.Seed = gen.Seed + int64(k)
		g, err := generator.New(cfg)
		if err != nil {
			return 0, err
		}
		bases[k] = g.Instance(n, 0)
	}
	for s := 0; s <= n; s++ {
		ok := true
		for _, base := range bases {
			inst := base.Clone()
			inst.Sockets = s
			res, err := alloc.Allocate(ctx, inst)
			if err != nil {
				return 0, err
			}
			if n > 0 && !FullService(res) {
				ok = false
				break
			}
		}
		if ok {
			return s, nil
		}
	}
	return 0, fmt.Errorf("benchmark: %s never reaches full service with %d devices", alloc.Name(), n)
}

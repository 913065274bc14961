package allocation

import (
	"context"

	"github.com/kilianp07/socketsched/core/factory"
	"github.com/kilianp07/socketsched/core/model"
)

// Allocator produces a schedule for an instance. Implementations must not
// mutate the instance they receive.
type Allocator interface {
	Name() string
	Allocate(ctx context.Context, inst model.Instance) (*model.RunResult, error)
}

// Build creates an allocator from its module configuration. The options are
// applied to every allocator built by the registered factories.
func Build(cfg factory.ModuleConfig, opts ...Option) (Allocator, error) {
	reg := factory.NewRegistry[Allocator]()
	if err := reg.Register("heuristic", func(conf map[string]any) (Allocator, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return NewHeuristic(c, opts...), nil
	}); err != nil {
		return nil, err
	}
	return reg.Create(cfg)
}

// BuildAll creates one allocator per configuration, in order.
func BuildAll(cfgs []factory.ModuleConfig, opts ...Option) ([]Allocator, error) {
	out := make([]Allocator, 0, len(cfgs))
	for _, c := range cfgs {
		a, err := Build(c, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

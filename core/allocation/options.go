package allocation

import (
	"github.com/kilianp07/socketsched/core/logger"
	"github.com/kilianp07/socketsched/internal/eventbus"
)

type options struct {
	log logger.Logger
	bus eventbus.EventBus
}

// Option configures an allocator.
type Option func(*options)

// WithLogger sets the logger used by the allocator.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithEventBus publishes per-slot events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

func (o *options) applyOptions(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
}

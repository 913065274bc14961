package simulator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/socketsched/core/model"
)

// Fleet simulates every device of an instance.
type Fleet struct {
	devices []*SimulatedDevice
	group   *errgroup.Group
}

// NewFleet creates one simulated device per instance device. Devices without
// an ID get the positional IDs used by the allocator.
func NewFleet(inst model.Instance, cfg Config) (*Fleet, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var strat AckStrategy = AutoAck{Delay: cfg.AckLatency}
	if cfg.DropRate > 0 {
		strat = NewRandomAck(cfg.AckLatency, cfg.DropRate, cfg.Seed)
	}
	ids := inst.DeviceIDs()
	f := &Fleet{devices: make([]*SimulatedDevice, len(inst.Devices))}
	for i, dev := range inst.Devices {
		dev.ID = ids[i]
		f.devices[i] = NewSimulatedDevice(dev, cfg.Broker, cfg.TopicPrefix, strat)
	}
	return f, nil
}

// Devices returns the simulated devices in instance order.
func (f *Fleet) Devices() []*SimulatedDevice { return f.devices }

// Start connects every device and serves acknowledgments in the background
// until ctx is done. Subscriptions are in place when Start returns.
func (f *Fleet) Start(ctx context.Context) error {
	for i, d := range f.devices {
		if err := d.Connect(); err != nil {
			for _, c := range f.devices[:i] {
				c.client.Disconnect(250)
			}
			return fmt.Errorf("device %s: %w", d.Device.ID, err)
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range f.devices {
		g.Go(func() error {
			d.Serve(gctx)
			return nil
		})
	}
	f.group = g
	return nil
}

// Wait blocks until every device stopped serving.
func (f *Fleet) Wait() error {
	if f.group == nil {
		return nil
	}
	return f.group.Wait()
}

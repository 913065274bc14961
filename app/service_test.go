package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/factory"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/core/runlog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Allocation.Algorithms = []factory.ModuleConfig{
		{Type: "heuristic"},
		{Type: "heuristic", Conf: map[string]any{"mode": "clamped"}},
	}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.RunLog = runlog.Config{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "runs.jsonl")}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func testInstance() model.Instance {
	return model.Instance{
		Devices: []model.Device{
			{ID: "a", RechargeRate: 20, DischargeRate: 10, InitialBattery: 5},
			{ID: "b", RechargeRate: 20, DischargeRate: 10, InitialBattery: 5},
		},
		Sockets:      1,
		TotalTime:    2,
		SlotDuration: 1,
	}
}

func TestServiceAllocateBoundAndLog(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "heuristic", svc.Allocator().Name())
	assert.Len(t, svc.Runner().Allocators(), 2)

	inst := testInstance()
	res, err := svc.Allocate(ctx, inst)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.FairnessScore)

	fb, err := svc.Bound(inst, res)
	require.NoError(t, err)
	assert.Greater(t, fb, 0.0)

	require.NoError(t, svc.Log(ctx, res, fb))
	recs, err := svc.Query(ctx, runlog.LogQuery{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, fb, recs[0].Bound)

	require.NoError(t, svc.Close())
}

func TestServiceWithoutRunLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.RunLog = runlog.Config{}
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	res, err := svc.Allocate(context.Background(), testInstance())
	require.NoError(t, err)
	assert.NoError(t, svc.Log(context.Background(), res, 0))
	_, err = svc.Query(context.Background(), runlog.LogQuery{})
	assert.Error(t, err)
}

func TestServicePublishRequiresBroker(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()
	res, err := svc.Allocate(context.Background(), testInstance())
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), res, time.Now())
	assert.Error(t, err)
}

func TestNewRejectsUnknownAllocator(t *testing.T) {
	cfg := testConfig(t)
	cfg.Allocation.Algorithms = []factory.ModuleConfig{{Type: "exact"}}
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

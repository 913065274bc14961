package bound

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/generator"
	"github.com/kilianp07/socketsched/core/model"
)

func TestFairnessSingleDevice(t *testing.T) {
	in := model.Instance{
		Devices:      []model.Device{{RechargeRate: 10, DischargeRate: 5, InitialBattery: 50}},
		Sockets:      1,
		TotalTime:    2,
		SlotDuration: 1,
	}
	b, err := Fairness(in)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, b, 1e-6)
}

func TestFairnessWithoutSockets(t *testing.T) {
	in := model.Instance{
		Devices:      []model.Device{{RechargeRate: 20, DischargeRate: 10, InitialBattery: 5}},
		TotalTime:    4,
		SlotDuration: 1,
	}
	b, err := Fairness(in)
	require.NoError(t, err)
	// Half a slot of energy: z = 0.5, usage 0.5/4.
	assert.InDelta(t, 0.625, b, 1e-6)
}

func TestFairnessEmpty(t *testing.T) {
	b, err := Fairness(model.Instance{Sockets: 1, TotalTime: 3, SlotDuration: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, b)
}

func TestFairnessBoundsClampedHeuristic(t *testing.T) {
	g, err := generator.New(generator.Config{Seed: 21, MaxDevices: 10})
	require.NoError(t, err)
	h := allocation.NewHeuristic(allocation.Config{Mode: allocation.ModeClamped})
	for k := 0; k < 15; k++ {
		in := g.Random()
		res, err := h.Allocate(context.Background(), in)
		require.NoError(t, err)
		b, err := Fairness(in)
		require.NoError(t, err)
		if res.FairnessScore > b+1e-6 {
			t.Fatalf("instance %d: heuristic %.4f above bound %.4f", k, res.FairnessScore, b)
		}
		if b > float64(in.SlotCount())+1+1e-6 {
			t.Fatalf("bound %.4f above the maximum score", b)
		}
	}
}

func TestFairnessSolverError(t *testing.T) {
	orig := simplex
	defer func() { simplex = orig }()
	simplex = func(c []float64, A mat.Matrix, b []float64, tol float64, initialBasis []int) (float64, []float64, error) {
		return math.NaN(), nil, errors.New("singular")
	}
	in := model.Instance{
		Devices:      []model.Device{{RechargeRate: 10, DischargeRate: 5, InitialBattery: 50}},
		Sockets:      1,
		TotalTime:    2,
		SlotDuration: 1,
	}
	_, err := Fairness(in)
	assert.ErrorIs(t, err, ErrSolver)
}

func TestGap(t *testing.T) {
	assert.InDelta(t, 0.25, Gap(4, 3), 1e-12)
	assert.Equal(t, 0.0, Gap(0, 1))
	assert.Equal(t, 0.0, Gap(2, 3))
}

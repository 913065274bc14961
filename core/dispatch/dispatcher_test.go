package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/socketsched/core/model"
	coremqtt "github.com/kilianp07/socketsched/core/mqtt"
	infmqtt "github.com/kilianp07/socketsched/infra/mqtt"
)

func sampleResult() *model.RunResult {
	return &model.RunResult{
		RunID:        "run-1",
		DeviceIDs:    []string{"a", "b"},
		Sockets:      1,
		SlotDuration: 0.5,
		InService:    [][]bool{{true, true, true}, {true, true, false}},
		Charging:     [][]bool{{true, true, false}, {false, false, false}},
		Battery:      [][]float64{{10, 20, 30, 25}, {50, 40, 30, 30}},
	}
}

func TestAssignmentsSlotMajor(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	as := Assignments(sampleResult(), start)
	require.Len(t, as, 6)
	assert.Equal(t, "a", as[0].DeviceID)
	assert.Equal(t, "b", as[1].DeviceID)
	assert.Equal(t, 1, as[2].Slot)
	assert.Equal(t, start.Add(30*time.Minute), as[2].StartsAt)
	assert.Equal(t, 20.0, as[2].Battery)
	assert.False(t, as[5].InService)
	assert.Equal(t, 0.5, as[5].Duration)
}

func TestDispatchAllSlots(t *testing.T) {
	pub := infmqtt.NewMockPublisher()
	d := NewPlanDispatcher(pub, Config{AckTimeoutMS: 10}, nil)
	rep, err := d.Dispatch(context.Background(), sampleResult(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Sent)
	assert.Equal(t, 6, rep.Acknowledged)
	assert.Empty(t, rep.Failed())
	assert.Len(t, pub.Sent(), 6)
}

func TestDispatchCollectsFailures(t *testing.T) {
	pub := infmqtt.NewMockPublisher()
	pub.FailIDs["a"] = true
	pub.NoAck["b"] = true
	d := NewPlanDispatcher(pub, Config{AckTimeoutMS: 10}, nil)
	rep, err := d.Dispatch(context.Background(), sampleResult(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Sent)
	assert.Equal(t, 0, rep.Acknowledged)
	assert.Equal(t, []string{"a", "b"}, rep.Failed())
	assert.True(t, errors.Is(rep.Failures["b"], coremqtt.ErrAckTimeout))
}

func TestDispatchOnlyChanges(t *testing.T) {
	pub := infmqtt.NewMockPublisher()
	d := NewPlanDispatcher(pub, Config{OnlyChanges: true}, nil)
	rep, err := d.Dispatch(context.Background(), sampleResult(), time.Now())
	require.NoError(t, err)
	// a: on,on,off -> 2 sent; b: idle,idle,out -> 2 sent.
	assert.Equal(t, 4, rep.Sent)
	assert.Equal(t, 2, rep.Skipped)
}

func TestDispatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewPlanDispatcher(infmqtt.NewMockPublisher(), Config{}, nil)
	_, err := d.Dispatch(ctx, sampleResult(), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = d.Dispatch(context.Background(), nil, time.Now())
	assert.Error(t, err)
}

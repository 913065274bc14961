package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/socketsched/core/benchmark"
	"github.com/kilianp07/socketsched/core/model"
)

func sampleResult() *model.RunResult {
	return &model.RunResult{
		RunID:        "r1",
		Algorithm:    "heuristic",
		DeviceIDs:    []string{"a", "b"},
		Sockets:      1,
		SlotDuration: 1,
		InService:    [][]bool{{true, true}, {false, true}},
		Charging:     [][]bool{{true, false}, {false, true}},
		Battery:      [][]float64{{10, 30, 20}, {5, 5, 25.5}},
		Usage:        []int{2, 1},
		MinUsageTime: 1,
		AverageUsage: 0.75,
	}
}

func TestWriteScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(&buf, sampleResult()))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, []string{"device_id", "slot", "battery", "charging", "in_service"}, recs[0])
	assert.Equal(t, []string{"a", "0", "10", "true", "true"}, recs[1])
	assert.Equal(t, []string{"b", "0", "5", "false", "false"}, recs[3])
	assert.Equal(t, []string{"b", "1", "5", "true", "true"}, recs[4])
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultJSON(&buf, sampleResult()))
	var got model.RunResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, 25.5, got.Battery[1][2])
	assert.Equal(t, 0.75, got.AverageUsage)
}

func TestWriteRowsCSV(t *testing.T) {
	rows := []benchmark.Row{{
		RunID: "r1", Algorithm: "heuristic", Seed: 3, Devices: 4, Sockets: 1, Slots: 12,
		MinUsageTime: 6, AverageUsage: 0.5, FairnessScore: 6.5, Bound: 7, Gap: 0.5,
		RunTime: 1500 * time.Microsecond,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteRowsCSV(&buf, rows))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"r1", "heuristic", "3", "4", "1", "12", "6", "0.5", "6.5", "7", "0.5", "1.5"}, recs[1])
}

func TestWriteSummaryCSV(t *testing.T) {
	sums := []benchmark.Summary{{Algorithm: "heuristic", Sockets: 2, Runs: 3, MeanFairness: 4, MeanRunTime: 2 * time.Millisecond}}
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, sums))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Len(t, recs[0], 11)
	assert.Equal(t, "heuristic", recs[1][0])
	assert.Equal(t, "4", recs[1][3])
	assert.Equal(t, "2", recs[1][10])
}

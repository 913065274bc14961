package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/socketsched/app"
	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/core/runlog"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestInstanceThenRun(t *testing.T) {
	dir := t.TempDir()
	instPath := filepath.Join(dir, "instance.yaml")
	execute(t, "instance", "--devices", "6", "--sockets", "2", "--seed", "3", "-o", instPath)

	inst, err := model.LoadInstance(instPath)
	require.NoError(t, err)
	assert.Len(t, inst.Devices, 6)
	assert.Equal(t, 2, inst.Sockets)

	csvPath := filepath.Join(dir, "schedule.csv")
	jsonPath := filepath.Join(dir, "result.json")
	out := execute(t, "run", "--instance", instPath, "--bound", "--csv", csvPath, "--json", jsonPath)
	assert.Contains(t, out, "algorithm heuristic")
	assert.Contains(t, out, "bound")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, 1+6*inst.SlotCount())
	_, err = os.Stat(jsonPath)
	assert.NoError(t, err)
}

func TestBenchWritesSummary(t *testing.T) {
	dir := t.TempDir()
	rows := filepath.Join(dir, "rows.csv")
	summary := filepath.Join(dir, "summary.csv")
	out := execute(t, "bench", "--devices", "8", "--sockets", "1,2", "--seeds", "2", "--rows", rows, "--summary", summary)
	assert.Contains(t, out, "ALGORITHM")

	data, err := os.ReadFile(rows)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 1+2*2)
	data, err = os.ReadFile(summary)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 1+2)
}

func TestInstanceToStdoutJSON(t *testing.T) {
	out := execute(t, "instance", "--devices", "2", "--sockets", "1", "--format", "json", "-o", "")
	inst, err := model.DecodeInstance(strings.NewReader(out), "json")
	require.NoError(t, err)
	assert.Len(t, inst.Devices, 2)
}

func TestServeMux(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.RunLog = runlog.Config{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "runs.jsonl")}
	svc, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()
	srv := httptest.NewServer(newMux(cfg, svc))
	defer srv.Close()

	body := `{"sockets":1,"total_time":2,"slot_duration":1,"devices":[{"id":"d1","recharge_rate":10,"discharge_rate":5,"initial_battery":50}]}`
	resp, err := http.Post(srv.URL+"/api/allocate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

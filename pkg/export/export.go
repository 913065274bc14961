package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/socketsched/core/benchmark"
	"github.com/kilianp07/socketsched/core/model"
)

// WriteResultJSON writes the full run result to w in indented JSON.
func WriteResultJSON(w io.Writer, res *model.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteScheduleCSV writes one line per device and slot. The battery column
// holds the level at the start of the slot.
func WriteScheduleCSV(w io.Writer, res *model.RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"device_id", "slot", "battery", "charging", "in_service"}); err != nil {
		return err
	}
	for i, id := range res.DeviceIDs {
		for t := 0; t < res.Slots(); t++ {
			rec := []string{
				id,
				strconv.Itoa(t),
				formatFloat(res.Battery[i][t]),
				strconv.FormatBool(res.Charging[i][t]),
				strconv.FormatBool(res.InService[i][t]),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRowsCSV writes benchmark rows in sweep order.
func WriteRowsCSV(w io.Writer, rows []benchmark.Row) error {
	cw := csv.NewWriter(w)
	header := []string{"run_id", "algorithm", "seed", "devices", "sockets", "slots",
		"min_usage_time", "average_usage", "fairness_score", "bound", "gap", "run_time_ms"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.RunID,
			r.Algorithm,
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.Devices),
			strconv.Itoa(r.Sockets),
			strconv.Itoa(r.Slots),
			strconv.Itoa(r.MinUsageTime),
			formatFloat(r.AverageUsage),
			formatFloat(r.FairnessScore),
			formatFloat(r.Bound),
			formatFloat(r.Gap),
			formatFloat(float64(r.RunTime.Microseconds()) / 1000),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one line per algorithm and socket count.
func WriteSummaryCSV(w io.Writer, sums []benchmark.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{"algorithm", "sockets", "runs", "mean_fairness", "std_fairness",
		"min_fairness", "max_fairness", "mean_min_usage", "mean_average_usage", "mean_gap", "mean_run_time_ms"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sums {
		rec := []string{
			s.Algorithm,
			strconv.Itoa(s.Sockets),
			strconv.Itoa(s.Runs),
			formatFloat(s.MeanFairness),
			formatFloat(s.StdFairness),
			formatFloat(s.MinFairness),
			formatFloat(s.MaxFairness),
			formatFloat(s.MeanMinUsage),
			formatFloat(s.MeanAverageUsage),
			formatFloat(s.MeanGap),
			formatFloat(float64(s.MeanRunTime.Microseconds()) / 1000),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

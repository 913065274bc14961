package benchmark

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the rows of one allocator at one socket count.
type Summary struct {
	Algorithm        string        `json:"algorithm"`
	Sockets          int           `json:"sockets"`
	Runs             int           `json:"runs"`
	MeanFairness     float64       `json:"mean_fairness"`
	StdFairness      float64       `json:"std_fairness"`
	MinFairness      float64       `json:"min_fairness"`
	MaxFairness      float64       `json:"max_fairness"`
	MeanMinUsage     float64       `json:"mean_min_usage"`
	MeanAverageUsage float64       `json:"mean_average_usage"`
	MeanGap          float64       `json:"mean_gap"`
	MeanRunTime      time.Duration `json:"mean_run_time"`
}

type summaryKey struct {
	algorithm string
	sockets   int
}

// Summarize groups rows by allocator and socket count, sorted by allocator
// name then socket count.
func Summarize(rows []Row) []Summary {
	groups := make(map[summaryKey][]Row)
	for _, r := range rows {
		k := summaryKey{r.Algorithm, r.Sockets}
		groups[k] = append(groups[k], r)
	}
	out := make([]Summary, 0, len(groups))
	for k, rs := range groups {
		fair := make([]float64, len(rs))
		minUsage := make([]float64, len(rs))
		avg := make([]float64, len(rs))
		gap := make([]float64, len(rs))
		rt := make([]float64, len(rs))
		for i, r := range rs {
			fair[i] = r.FairnessScore
			minUsage[i] = float64(r.MinUsageTime)
			avg[i] = r.AverageUsage
			gap[i] = r.Gap
			rt[i] = float64(r.RunTime)
		}
		s := Summary{
			Algorithm:        k.algorithm,
			Sockets:          k.sockets,
			Runs:             len(rs),
			MeanFairness:     stat.Mean(fair, nil),
			MinFairness:      floats.Min(fair),
			MaxFairness:      floats.Max(fair),
			MeanMinUsage:     stat.Mean(minUsage, nil),
			MeanAverageUsage: stat.Mean(avg, nil),
			MeanGap:          stat.Mean(gap, nil),
			MeanRunTime:      time.Duration(stat.Mean(rt, nil)),
		}
		if len(rs) > 1 {
			s.StdFairness = stat.StdDev(fair, nil)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Algorithm != out[j].Algorithm {
			return out[i].Algorithm < out[j].Algorithm
		}
		return out[i].Sockets < out[j].Sockets
	})
	return out
}

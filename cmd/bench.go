package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/app"
	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/benchmark"
	"github.com/kilianp07/socketsched/core/runlog"
	"github.com/kilianp07/socketsched/pkg/export"
)

var benchOpts struct {
	devices int
	sockets []int
	seeds   int
	seed    int64
	bound   bool
	rows    string
	summary string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare the configured allocators over generated instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
			return runBench(ctx, cmd, cfg, svc)
		})
	},
}

func init() {
	f := benchCmd.Flags()
	f.IntVar(&benchOpts.devices, "devices", 0, "fleet size; random per seed when zero")
	f.IntSliceVar(&benchOpts.sockets, "sockets", nil, "socket counts to sweep")
	f.IntVar(&benchOpts.seeds, "seeds", 0, "number of seeds")
	f.Int64Var(&benchOpts.seed, "seed", 0, "first seed")
	f.BoolVar(&benchOpts.bound, "bound", false, "attach the relaxation bound and gap")
	f.StringVar(&benchOpts.rows, "rows", "", "write per-run rows as CSV")
	f.StringVar(&benchOpts.summary, "summary", "", "write per-socket summaries as CSV")
	rootCmd.AddCommand(benchCmd)
}

func runBench(ctx context.Context, cmd *cobra.Command, cfg *config.Config, svc *app.Service) error {
	bcfg := cfg.Benchmark
	gcfg := cfg.Generator
	flags := cmd.Flags()
	if flags.Changed("devices") {
		bcfg.Devices = benchOpts.devices
	}
	if flags.Changed("sockets") {
		bcfg.Sockets = benchOpts.sockets
	}
	if flags.Changed("seeds") {
		bcfg.Seeds = benchOpts.seeds
	}
	if flags.Changed("bound") {
		bcfg.Bound = benchOpts.bound
	}
	if flags.Changed("seed") {
		gcfg.Seed = benchOpts.seed
	}
	bcfg.SetDefaults()
	if err := bcfg.Validate(); err != nil {
		return err
	}

	rows, err := svc.Runner().Sweep(ctx, gcfg, bcfg)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := svc.Append(ctx, rowRecord(r)); err != nil {
			return fmt.Errorf("run log: %w", err)
		}
	}
	sums := benchmark.Summarize(rows)
	printSummary(cmd.OutOrStdout(), sums)
	if benchOpts.rows != "" {
		if err := writeTo(benchOpts.rows, func(w io.Writer) error { return export.WriteRowsCSV(w, rows) }); err != nil {
			return err
		}
	}
	if benchOpts.summary != "" {
		return writeTo(benchOpts.summary, func(w io.Writer) error { return export.WriteSummaryCSV(w, sums) })
	}
	return nil
}

func rowRecord(r benchmark.Row) runlog.LogRecord {
	return runlog.LogRecord{
		Timestamp:     time.Now().UTC(),
		RunID:         r.RunID,
		Algorithm:     r.Algorithm,
		Devices:       r.Devices,
		Sockets:       r.Sockets,
		Slots:         r.Slots,
		MinUsageTime:  r.MinUsageTime,
		AverageUsage:  r.AverageUsage,
		FairnessScore: r.FairnessScore,
		Bound:         r.Bound,
		RunTime:       r.RunTime,
	}
}

func printSummary(out io.Writer, sums []benchmark.Summary) {
	tw := newTable(out, "algorithm", "sockets", "runs", "fairness", "min", "max", "gap", "run time")
	for _, s := range sums {
		tw.AppendRow(table.Row{s.Algorithm, s.Sockets, s.Runs,
			fmt.Sprintf("%.3f", s.MeanFairness), fmt.Sprintf("%.3f", s.MinFairness),
			fmt.Sprintf("%.3f", s.MaxFairness), fmt.Sprintf("%.3f", s.MeanGap), s.MeanRunTime})
	}
	tw.Render()
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/app"
	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/runlog"
)

var runsOpts struct {
	algorithm string
	runID     string
	since     time.Duration
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded in the run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, _ *config.Config, svc *app.Service) error {
			q := runlog.LogQuery{Algorithm: runsOpts.algorithm, RunID: runsOpts.runID}
			if runsOpts.since > 0 {
				q.Start = time.Now().Add(-runsOpts.since)
			}
			recs, err := svc.Query(ctx, q)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "time", "run", "algorithm", "devices", "sockets", "min usage", "fairness", "bound")
			for _, r := range recs {
				tw.AppendRow(table.Row{r.Timestamp.Format(time.RFC3339), r.RunID, r.Algorithm, r.Devices, r.Sockets,
					r.MinUsageTime, fmt.Sprintf("%.3f", r.FairnessScore), fmt.Sprintf("%.3f", r.Bound)})
			}
			tw.Render()
			return nil
		})
	},
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsOpts.algorithm, "algorithm", "", "filter by algorithm name")
	f.StringVar(&runsOpts.runID, "run-id", "", "filter by run id")
	f.DurationVar(&runsOpts.since, "since", 0, "only runs newer than this")
	rootCmd.AddCommand(runsCmd)
}

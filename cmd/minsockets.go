package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/app"
	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/benchmark"
	"github.com/kilianp07/socketsched/core/factory"
	"github.com/kilianp07/socketsched/infra/logger"
)

var minSocketsOpts struct {
	devices []int
	seeds   int
	mode    string
}

var minSocketsCmd = &cobra.Command{
	Use:   "min-sockets",
	Short: "Find the smallest socket count giving every seed full service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, cfg *config.Config, _ *app.Service) error {
			return runMinSockets(ctx, cmd, cfg)
		})
	},
}

func init() {
	f := minSocketsCmd.Flags()
	f.IntSliceVar(&minSocketsOpts.devices, "devices", []int{5, 10, 15, 20, 25}, "fleet sizes")
	f.IntVar(&minSocketsOpts.seeds, "seeds", 10, "number of seeds per fleet size")
	// The reference mode keeps denied devices in service, which always
	// looks like full service.
	f.StringVar(&minSocketsOpts.mode, "mode", string(allocation.ModeClamped), "heuristic mode")
	rootCmd.AddCommand(minSocketsCmd)
}

func runMinSockets(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	alloc, err := allocation.Build(factory.ModuleConfig{
		Type: "heuristic",
		Conf: map[string]any{"mode": minSocketsOpts.mode},
	}, allocation.WithLogger(logger.New("allocation")))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "devices\tmin_sockets")
	for _, n := range minSocketsOpts.devices {
		s, err := benchmark.MinSockets(ctx, alloc, cfg.Generator, n, minSocketsOpts.seeds)
		if err != nil {
			return fmt.Errorf("%d devices: %w", n, err)
		}
		fmt.Fprintf(out, "%d\t%d\n", n, s)
	}
	return nil
}

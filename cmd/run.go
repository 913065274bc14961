package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/app"
	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/generator"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/pkg/export"
)

var runOpts struct {
	instance string
	devices  int
	sockets  int
	seed     int64
	bound    bool
	outJSON  string
	outCSV   string
	publish  bool
	start    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Allocate sockets for one instance and print the scores",
}

func init() {
	// RunE is set here to break the runCmd -> runOnce -> runCmd initialization cycle.
	runCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
			return runOnce(ctx, cmd.OutOrStdout(), cfg, svc)
		})
	}
	f := runCmd.Flags()
	f.StringVarP(&runOpts.instance, "instance", "i", "", "instance file; generated when empty")
	f.IntVar(&runOpts.devices, "devices", 0, "number of generated devices; random when zero")
	f.IntVar(&runOpts.sockets, "sockets", -1, "socket count override")
	f.Int64Var(&runOpts.seed, "seed", 0, "generator seed override")
	f.BoolVar(&runOpts.bound, "bound", false, "compute the relaxation bound")
	f.StringVar(&runOpts.outJSON, "json", "", "write the full result as JSON")
	f.StringVar(&runOpts.outCSV, "csv", "", "write the schedule as CSV")
	f.BoolVar(&runOpts.publish, "publish", false, "publish the plan over MQTT")
	f.StringVar(&runOpts.start, "start", "", "start of slot zero (RFC3339), now when empty")
	rootCmd.AddCommand(runCmd)
}

func loadOrGenerate(cmd *cobra.Command, cfg *config.Config) (model.Instance, error) {
	var inst model.Instance
	if runOpts.instance != "" {
		loaded, err := model.LoadInstance(runOpts.instance)
		if err != nil {
			return inst, fmt.Errorf("load instance: %w", err)
		}
		inst = loaded
	} else {
		gcfg := cfg.Generator
		if cmd.Flags().Changed("seed") {
			gcfg.Seed = runOpts.seed
		}
		gen, err := generator.New(gcfg)
		if err != nil {
			return inst, err
		}
		if runOpts.devices > 0 {
			inst = gen.Instance(runOpts.devices, max(1, runOpts.devices/4))
		} else {
			inst = gen.Random()
		}
	}
	if runOpts.sockets >= 0 {
		inst.Sockets = runOpts.sockets
	}
	return inst, nil
}

func runOnce(ctx context.Context, out io.Writer, cfg *config.Config, svc *app.Service) error {
	inst, err := loadOrGenerate(runCmd, cfg)
	if err != nil {
		return err
	}
	res, err := svc.Allocate(ctx, inst)
	if err != nil {
		return err
	}
	var fb float64
	if runOpts.bound {
		if fb, err = svc.Bound(inst, res); err != nil {
			return err
		}
	}
	printResult(out, inst, res, fb)
	if err := svc.Log(ctx, res, fb); err != nil {
		return fmt.Errorf("run log: %w", err)
	}
	if runOpts.outJSON != "" {
		if err := writeTo(runOpts.outJSON, func(w io.Writer) error { return export.WriteResultJSON(w, res) }); err != nil {
			return err
		}
	}
	if runOpts.outCSV != "" {
		if err := writeTo(runOpts.outCSV, func(w io.Writer) error { return export.WriteScheduleCSV(w, res) }); err != nil {
			return err
		}
	}
	if !runOpts.publish {
		return nil
	}
	start := time.Now()
	if runOpts.start != "" {
		if start, err = time.Parse(time.RFC3339, runOpts.start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	rep, err := svc.Publish(ctx, res, start)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "published %d assignments (%d skipped, %d acknowledged)\n", rep.Sent, rep.Skipped, rep.Acknowledged)
	for _, id := range rep.Failed() {
		fmt.Fprintf(out, "  %s: %v\n", id, rep.Failures[id])
	}
	return nil
}

func printResult(out io.Writer, inst model.Instance, res *model.RunResult, fb float64) {
	fmt.Fprintf(out, "algorithm %s  devices %d  sockets %d  slots %d  dt %gh\n",
		res.Algorithm, len(inst.Devices), inst.Sockets, res.Slots(), inst.SlotDuration)
	fmt.Fprintf(out, "min usage %d  average usage %.4f  fairness %.4f  run time %s\n",
		res.MinUsageTime, res.AverageUsage, res.FairnessScore, res.RunTime)
	if fb > 0 {
		fmt.Fprintf(out, "bound %.4f\n", fb)
	}
}

func writeTo(path string, write func(io.Writer) error) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

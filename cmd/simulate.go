package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/infra/logger"
	"github.com/kilianp07/socketsched/simulator"
)

var simulateOpts struct {
	instance   string
	ackLatency time.Duration
	dropRate   float64
	seed       int64
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate the devices of an instance on the MQTT broker",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateOpts.instance, "instance", "i", "", "instance file")
	f.DurationVar(&simulateOpts.ackLatency, "ack-latency", 0, "delay before each acknowledgment")
	f.Float64Var(&simulateOpts.dropRate, "drop-rate", 0, "probability of dropping an acknowledgment")
	f.Int64Var(&simulateOpts.seed, "seed", 1, "seed of the drop decisions")
	_ = simulateCmd.MarkFlagRequired("instance")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	inst, err := model.LoadInstance(simulateOpts.instance)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}
	fleet, err := simulator.NewFleet(inst, simulator.Config{
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		AckLatency:  simulateOpts.ackLatency,
		DropRate:    simulateOpts.dropRate,
		Seed:        simulateOpts.seed,
	})
	if err != nil {
		return err
	}
	if err := fleet.Start(ctx); err != nil {
		return err
	}
	log := logger.New("simulate")
	log.Infof("simulating %d devices on %s", len(fleet.Devices()), cfg.MQTT.Broker)
	if err := fleet.Wait(); err != nil {
		return err
	}
	for _, d := range fleet.Devices() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tapplied %d\tbattery %.2f\n", d.Device.ID, d.Applied(), d.Battery())
	}
	return nil
}

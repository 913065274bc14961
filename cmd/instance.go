package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/core/generator"
	"github.com/kilianp07/socketsched/core/model"
)

var instanceOpts struct {
	devices int
	sockets int
	seed    int64
	out     string
	format  string
}

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Generate a seeded instance",
	RunE:  runInstance,
}

func init() {
	f := instanceCmd.Flags()
	f.IntVar(&instanceOpts.devices, "devices", 0, "number of devices; random when zero")
	f.IntVar(&instanceOpts.sockets, "sockets", -1, "socket count; random when negative")
	f.Int64Var(&instanceOpts.seed, "seed", 0, "generator seed override")
	f.StringVarP(&instanceOpts.out, "out", "o", "", "output file; stdout when empty")
	f.StringVar(&instanceOpts.format, "format", "yaml", "output format when writing to stdout (yaml or json)")
	rootCmd.AddCommand(instanceCmd)
}

func runInstance(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gcfg := cfg.Generator
	if cmd.Flags().Changed("seed") {
		gcfg.Seed = instanceOpts.seed
	}
	gen, err := generator.New(gcfg)
	if err != nil {
		return err
	}
	var inst model.Instance
	if instanceOpts.devices > 0 {
		inst = gen.Instance(instanceOpts.devices, max(1, instanceOpts.devices/4))
	} else {
		inst = gen.Random()
	}
	if instanceOpts.sockets >= 0 {
		inst.Sockets = instanceOpts.sockets
	}
	if instanceOpts.out == "" {
		return model.EncodeInstance(cmd.OutOrStdout(), inst, instanceOpts.format)
	}
	format := strings.TrimPrefix(filepath.Ext(instanceOpts.out), ".")
	return writeTo(instanceOpts.out, func(w io.Writer) error { return model.EncodeInstance(w, inst, format) })
}

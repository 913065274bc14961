package main

import (
	"os"

	"github.com/kilianp07/socketsched/cmd"
	coremon "github.com/kilianp07/socketsched/core/monitoring"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	defer coremon.Recover()
	return cmd.Execute()
}

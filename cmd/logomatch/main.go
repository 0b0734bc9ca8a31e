package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

var version = "dev"

// shutdownSignals cancel the command context so running batches stop cleanly.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

func main() {
	root := newRootCommand()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(shutdownSignals...),
	); err != nil {
		os.Exit(1)
	}
}

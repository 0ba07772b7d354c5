package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/sir_venger/rangeserve/internal/cli"
)

// main запускает CLI; SIGINT/SIGTERM отменяют контекст и приводят к graceful shutdown.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rangeserve:", err)
		stop()
		os.Exit(1)
	}
}

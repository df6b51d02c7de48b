// Package main is the entry point for the ethpkg-donate CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpkg/donate/internal/cli"
)

func main() {
	// Interrupting abandons a donation that is waiting for the wallet.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

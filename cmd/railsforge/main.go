// Package main is the entry point for the railsforge CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/donaldgifford/railsforge/cmd"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cmd.SetVersionInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

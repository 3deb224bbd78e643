// Command pvecheck is a monitoring plugin for Proxmox VE clusters. It prints
// one result line (plus details) and exits with the plugin status code.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dm/pvecheck/internal/model"
	"github.com/dm/pvecheck/internal/report"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli := newCLI(os.Stdout)
	err := cli.rootCmd().ExecuteContext(ctx)
	stop()
	cli.close()

	if err != nil {
		report.Exit(model.Outcome{Severity: model.SeverityUnknown, Summary: err.Error()})
	}
	if cli.outcome != nil {
		report.Exit(*cli.outcome)
	}
}

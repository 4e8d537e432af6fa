// Package main serves the battle tools over MCP stdio.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/partybattle/internal/platform/cmd"
	"github.com/louisbranch/partybattle/internal/platform/config"

	mcpcmd "github.com/louisbranch/partybattle/internal/cmd/mcp"
)

func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	logger, err := cmd.NewLogger(cmd.ServiceMCP)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cmd.RunWithTelemetryAndOptions(ctx, cmd.ServiceMCP, cmd.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return mcpcmd.Run(ctx, cfg, logger)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}

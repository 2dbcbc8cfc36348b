package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wtp/internal/cli"
	"wtp/internal/cli/commands"
	"wtp/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "wtp",
		Short:         "Parallel browser test planner and runner",
		Long:          `Resolve test groups into execution units (group, file, browser, harness) and run them in parallel browsers with per-unit timeouts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults; commands load the real one before running
	cfg := config.New()

	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

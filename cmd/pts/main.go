package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pts/internal/cli"
	"pts/internal/cli/commands"
	"pts/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "pts",
		Short:   "Parallel test splitter",
		Long:    `Splits a test suite into lanes of balanced wall-clock time using the durations of the previous successful run, and runs the lanes in parallel.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags)

	// Cancel running lanes on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

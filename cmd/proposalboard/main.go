package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ProposalBoard/internal/app"
	"ProposalBoard/internal/config"
	"ProposalBoard/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "proposalboard",
	Short:         "Governance proposals merged with their vote tallies",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(votesCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApplication() *app.Application {
	cfg := config.Load()
	// stdout carries the rendered tables
	return app.New(cfg, logging.NewTo(os.Stderr, cfg.Logging.Level))
}

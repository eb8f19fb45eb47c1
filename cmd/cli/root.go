package main

import (
	"context"
	"os/signal"
	"syscall"

	"shate-rag-be/internal/config"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shate",
	Short: "The Shate support assistant toolbox",
	Long: `Operator tooling for The Shate support assistant: ask questions without
the HTTP server, inspect the shop schema, manage indexes, run the LLM proxy
and tail answered-chat events.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(askCmd, schemaCmd, indexesCmd, proxyCmd, eventsCmd)
}

package main

import (
	"fmt"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/mongostore"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the shop collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, logger.NewNopLogger())
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		created, err := store.EnsureIndexes(ctx, mongostore.ShopIndexes())
		for _, name := range created {
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s\n", name)
		}
		if err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d indexes ensured\n", len(created))
		return nil
	},
}

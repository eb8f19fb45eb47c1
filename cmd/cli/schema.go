package main

import (
	"fmt"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/mongostore"

	"github.com/spf13/cobra"
)

var schemaAll bool

var schemaCmd = &cobra.Command{
	Use:   "schema [collection...]",
	Short: "Print the schema text the query generator sees",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, logger.NewNopLogger())
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		names := args
		switch {
		case len(names) > 0:
		case schemaAll:
			names = mongostore.SortedCollections()
		default:
			names = cfg.Mongo.AllowedCollections
		}

		text, err := store.Schema(ctx, names)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaAll, "all", false, "Include every shop collection, not only the allowlisted ones")
}

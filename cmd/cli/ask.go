package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shate-rag-be/internal/bootstrap"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/graph"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	askShowEvidence bool
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question through the full retrieval graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowEvidence, "evidence", false, "Print the retrieved evidence")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the final state as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	infra, err := bootstrap.NewInfrastructure(ctx, cfg, nil, logger.NewNopLogger())
	if err != nil {
		return err
	}
	defer infra.Close(ctx)

	assistant, err := bootstrap.BuildAssistant(ctx, cfg, infra)
	if err != nil {
		return err
	}

	start := time.Now()
	state, err := assistant.Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	printAnswer(cmd, state, time.Since(start))
	return nil
}

func printAnswer(cmd *cobra.Command, state *graph.State, took time.Duration) {
	out := cmd.OutOrStdout()
	dim := color.New(color.FgHiBlack)

	for _, d := range state.Decisions {
		dim.Fprintf(out, "→ %s: %s\n", d.Source, d.Query)
	}
	for _, b := range state.Branches {
		if b.Failed() {
			color.New(color.FgYellow).Fprintf(out, "! %s failed: %v\n", b.Decision.Source, b.Err)
		}
	}

	if askShowEvidence {
		for i, doc := range state.Documents {
			color.New(color.FgCyan).Fprintf(out, "\n[%d] %s", i+1, doc.Metadata.SourceType)
			if doc.Metadata.URL != "" {
				fmt.Fprintf(out, " %s", doc.Metadata.URL)
			}
			fmt.Fprintf(out, "\n%s\n", doc.Content)
		}
	}

	fmt.Fprintln(out)
	color.New(color.FgGreen, color.Bold).Fprintln(out, state.Generation)
	dim.Fprintf(out, "\n%d documents in %s\n", len(state.Documents), took.Round(time.Millisecond))
}

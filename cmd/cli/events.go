package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/service"
	"shate-rag-be/pkg/events"
	pktNats "shate-rag-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var eventsDurable string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail answered-chat events from NATS",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDurable, "durable", "", "Durable consumer name (empty follows new events only)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	if cfg.App.NatsURL == "" {
		return errors.New("NATS_URL is not set")
	}
	ctx := cmd.Context()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, logger.NewNopLogger())
	if err != nil {
		return err
	}
	defer sub.Close()

	out := cmd.OutOrStdout()
	subject := pktNats.SubjectPrefix + service.EventChatAnswered
	err = sub.Subscribe(ctx, subject, eventsDurable, func(_ context.Context, ev events.Event) error {
		data, err := json.Marshal(ev.Payload())
		if err != nil {
			return err
		}
		color.New(color.FgHiBlack).Fprintf(out, "%s ", ev.Timestamp().Format("15:04:05"))
		color.New(color.FgCyan).Fprintf(out, "%s ", ev.EventType())
		fmt.Fprintln(out, string(data))
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Listening on %s, Ctrl+C to stop\n", subject)
	<-ctx.Done()
	return nil
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mingle-social/apiserver/config"
	"github.com/mingle-social/apiserver/internal/events"
	"github.com/mingle-social/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd tails the domain event channel. Useful for verifying broker
// wiring and for ad-hoc inspection of the event stream.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail the domain event stream from the configured broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		broker, err := openBroker(cmd, cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = broker.Close()
		}()

		fmt.Printf("listening on %s\n", events.Channel)
		return broker.Subscribe(cmd.Context(), events.Channel, func(ctx context.Context, msg mq.Message) error {
			fmt.Printf("%s %s\n", msg.ID, string(msg.Data))
			return nil
		})
	},
}

func openBroker(cmd *cobra.Command, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(cmd.Context(), cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "":
		return nil, errors.New("MQ_BACKEND is not configured")
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"grocery-analytics/internal/apperror"
	"grocery-analytics/internal/config"
	"grocery-analytics/internal/kafka"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"
	"grocery-analytics/internal/redis"
	"grocery-analytics/internal/services"

	"github.com/spf13/cobra"
)

type eventPublisher interface {
	PublishDataChanged(eventType models.EventType, data interface{}) error
	Close() error
}

var (
	newPublisher = func(cfg *config.KafkaConfig, log *logger.Logger) (eventPublisher, error) {
		producer, err := kafka.NewProducer(cfg, log)
		if err != nil {
			return nil, err
		}
		return producer, nil
	}
	redisConnect = redis.Connect
)

type invalidateOptions struct {
	event  string
	data   string
	direct bool
}

func newInvalidateCmd() *cobra.Command {
	opts := &invalidateOptions{}

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Announce a data change so running servers drop cached dashboard snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidate(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.event, "event", "e", string(models.EventTypeProductUpdated), "event type: order.created, order.status_changed, product.updated, favorite.changed")
	cmd.Flags().StringVar(&opts.data, "data", "", "optional JSON payload attached to the event")
	cmd.Flags().BoolVar(&opts.direct, "direct", false, "delete cached snapshots in Redis instead of publishing to Kafka")
	return cmd
}

func runInvalidate(cmd *cobra.Command, opts *invalidateOptions) error {
	cfg, log, err := loadEnvironment(cmd, &snapshotOptions{})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.direct {
		client, err := redisConnect(&cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer client.Close()

		removed, err := services.NewSnapshotCache(client, log, &cfg.Analytics).Invalidate(ctx)
		if err != nil {
			return fmt.Errorf("invalidate snapshots: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached snapshots\n", removed)
		return nil
	}

	eventType, err := parseEventType(opts.event)
	if err != nil {
		return err
	}

	var payload interface{}
	if opts.data != "" {
		if !json.Valid([]byte(opts.data)) {
			return apperror.Validation("data must be valid JSON", nil)
		}
		payload = json.RawMessage(opts.data)
	}

	publisher, err := newPublisher(&cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer publisher.Close()

	if err := publisher.PublishDataChanged(eventType, payload); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", eventType)
	return nil
}

func parseEventType(value string) (models.EventType, error) {
	for _, eventType := range models.DataChangeEvents {
		if string(eventType) == value {
			return eventType, nil
		}
	}
	return "", apperror.Validation(fmt.Sprintf("unknown event type %q", value), nil)
}

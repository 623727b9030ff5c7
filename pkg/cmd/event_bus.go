// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/docpipe/docpipe/pkg/channels/kafka"
	"github.com/docpipe/docpipe/pkg/eventbus"
)

// NewEventBus creates an event bus for the given provider. "kafka" builds
// the watermill Kafka channel from KAFKA_BROKERS; everything else gets an
// in-process GoChannel bus, which is what single-binary deployments and
// tests use.
func NewEventBus(provider, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

		return eventbus.NewWatermillEventBus(pubSub, pubSub), nil
	}
}

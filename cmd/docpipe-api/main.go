package main

import (
	"context"
	"os"

	"github.com/docpipe/docpipe/pkg/blob"
	"github.com/docpipe/docpipe/pkg/cmd"
	"github.com/docpipe/docpipe/pkg/extractor"
	"github.com/docpipe/docpipe/pkg/log"
	"github.com/docpipe/docpipe/pkg/notifier"
	"github.com/docpipe/docpipe/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 8081

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "docpipe-api",
		Usage:                 "Manage document workflows, documents and runs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka or gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "blob-path",
				Usage:   "Root directory for exported files",
				Value:   "./data/blobs",
				Sources: cli.EnvVars("BLOB_PATH"),
			},
			&cli.StringFlag{
				Name:    "notify-endpoint",
				Usage:   "Notification provider endpoint URL",
				Sources: cli.EnvVars("NOTIFY_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "notify-api-key",
				Usage:   "Notification provider API key",
				Sources: cli.EnvVars("NOTIFY_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "notify-from",
				Usage:   "From address for outgoing notifications",
				Value:   "docpipe@localhost",
				Sources: cli.EnvVars("NOTIFY_FROM"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text or json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger.InfoContext(ctx, "Initializing docpipe API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "docpipe-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			sender := notifier.NewHTTPNotifier(
				command.String("notify-endpoint"),
				command.String("notify-api-key"),
				command.String("notify-from"),
			)
			blobs := blob.NewFilesystemStore(command.String("blob-path"))
			reg := cmd.NewRegistry(logger, persistence, extractor.NewMockExtractor(), sender, blobs)
			executor := workflow.NewExecutor(logger, persistence, reg, sender, eventBus)

			api := NewAPI(logger, persistence, reg, executor, eventBus)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

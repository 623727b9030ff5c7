package main

import (
	"context"
	"os"

	"github.com/docpipe/docpipe/pkg/blob"
	"github.com/docpipe/docpipe/pkg/cmd"
	"github.com/docpipe/docpipe/pkg/extractor"
	"github.com/docpipe/docpipe/pkg/log"
	"github.com/docpipe/docpipe/pkg/notifier"
	"github.com/docpipe/docpipe/pkg/otelhelper"
	"github.com/docpipe/docpipe/pkg/triggers/queue"
	"github.com/docpipe/docpipe/pkg/triggers/schedule"
	"github.com/docpipe/docpipe/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	command := &cli.Command{
		Name:                  "docpipe-runner",
		EnableShellCompletion: true,
		Usage:                 "Run workflow executions for ingested documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
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
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "blob-path",
				Usage:   "Root directory for exported files",
				Value:   "./data/blobs",
				Sources: cli.EnvVars("BLOB_PATH"),
			},
			&cli.StringFlag{
				Name:    "ingest-queue",
				Usage:   "Redis queue name for direct ingest messages (disabled when empty)",
				Sources: cli.EnvVars("INGEST_QUEUE"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the ingest queue",
				Value:   "localhost:6379",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "resume-cron",
				Usage:   "Cron expression for the scheduled re-trigger (disabled when empty)",
				Sources: cli.EnvVars("RESUME_CRON"),
			},
			&cli.StringFlag{
				Name:    "resume-workflow-id",
				Usage:   "Workflow executed by the scheduled re-trigger",
				Sources: cli.EnvVars("RESUME_WORKFLOW_ID"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "runner-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("docpipe-runner").With("worker_id", workerID)
			logger.InfoContext(ctx, "Initializing docpipe runner")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "docpipe-runner", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var tracer trace.Tracer

			if command.Bool("tracing") {
				tracer, err = otelhelper.NewTracer(ctx, "docpipe-runner")
				if err != nil {
					return err
				}
			}

			sender := notifier.NewHTTPNotifier(
				command.String("notify-endpoint"),
				command.String("notify-api-key"),
				command.String("notify-from"),
			)
			blobs := blob.NewFilesystemStore(command.String("blob-path"))
			reg := cmd.NewRegistry(logger, persistence, extractor.NewMockExtractor(), sender, blobs)
			executor := workflow.NewExecutor(logger, persistence, reg, sender, eventBus)

			worker := NewWorker(workerID, persistence, executor, eventBus, tracer, logger)

			if queueName := command.String("ingest-queue"); queueName != "" {
				trigger, err := queue.NewTrigger(ctx, map[string]any{
					"queue": queueName,
					"connection": map[string]any{
						"addr": command.String("redis-addr"),
					},
				}, logger)
				if err != nil {
					return err
				}

				worker.AddTrigger(trigger)
			}

			if cronExpr := command.String("resume-cron"); cronExpr != "" {
				trigger, err := schedule.NewTrigger(map[string]any{
					"id":          workerID + "-resume",
					"cron":        cronExpr,
					"workflow_id": command.String("resume-workflow-id"),
				}, logger)
				if err != nil {
					return err
				}

				worker.AddTrigger(trigger)
			}

			if err := worker.Start(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to start runner worker", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

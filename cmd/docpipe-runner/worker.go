package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/docpipe/docpipe/pkg/eventbus"
	"github.com/docpipe/docpipe/pkg/events"
	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/otelhelper"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
	"github.com/docpipe/docpipe/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Worker consumes document.received events and executes every active
// workflow of the document's organization against the document, one run per
// workflow, sequentially.
type Worker struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	executor    *workflow.Executor
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	triggers    []protocol.Trigger
}

func NewWorker(
	id string,
	p persistence.Persistence,
	executor *workflow.Executor,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		id:          id,
		logger:      logger.With("module", "docpipe-runner", "worker_id", id),
		persistence: p,
		executor:    executor,
		eventBus:    eventBus,
		tracer:      tracer,
	}
}

// AddTrigger registers an ingest trigger started alongside the event
// subscription.
func (w *Worker) AddTrigger(trigger protocol.Trigger) {
	w.triggers = append(w.triggers, trigger)
}

func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting runner worker")

	if err := w.eventBus.Handle(events.DocumentReceivedEvent, w.handleDocumentReceived); err != nil {
		return err
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	for _, trigger := range w.triggers {
		if err := trigger.Start(ctx, w.handleTriggerData); err != nil {
			return err
		}
	}

	w.logger.InfoContext(ctx, "Runner worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	w.logger.InfoContext(ctx, "Shutting down runner worker")

	for _, trigger := range w.triggers {
		if err := trigger.Stop(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to stop trigger", "error", err)
		}
	}

	return nil
}

func (w *Worker) handleDocumentReceived(ctx context.Context, event any) error {
	received, ok := event.(*events.DocumentReceived)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for DocumentReceived")

		return nil
	}

	logger := w.logger.With(
		"document_id", received.DocumentID,
		"org_id", received.OrgID,
		"event_id", received.ID,
	)
	logger.InfoContext(ctx, "Processing document received event")

	workflows, err := w.persistence.WorkflowRepository().Workflows(ctx, received.OrgID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list workflows", "error", err)

		return err
	}

	executed := 0

	for _, wf := range workflows {
		if !wf.Active {
			continue
		}

		if err := w.executeRun(ctx, logger, wf.ID, received.DocumentID); err != nil {
			logger.ErrorContext(ctx, "Failed to execute workflow", "workflow_id", wf.ID, "error", err)

			continue
		}

		executed++
	}

	if executed == 0 {
		logger.InfoContext(ctx, "No active workflows for document")
	}

	return nil
}

// handleTriggerData runs workflow executions from a trigger payload. Queue
// messages name both workflow_id and document_id. Scheduled payloads name
// only workflow_id and fan out over the org's approved documents, which is
// how paused reviews resolved out of band get their downstream export and
// notify steps.
func (w *Worker) handleTriggerData(ctx context.Context, data map[string]any) error {
	workflowID, _ := data["workflow_id"].(string)
	documentID, _ := data["document_id"].(string)

	if workflowID == "" {
		w.logger.WarnContext(ctx, "Ignoring trigger payload without workflow_id")

		return errors.New("trigger payload requires workflow_id")
	}

	if documentID != "" {
		return w.executeRun(ctx, w.logger, workflowID, documentID)
	}

	wf, err := w.persistence.WorkflowRepository().WorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}

	documents, err := w.persistence.DocumentRepository().DocumentsByStatus(ctx, wf.OrgID, models.DocumentStatusApproved)
	if err != nil {
		return err
	}

	for _, document := range documents {
		if err := w.executeRun(ctx, w.logger, workflowID, document.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to execute scheduled run", "document_id", document.ID, "error", err)
		}
	}

	return nil
}

func (w *Worker) executeRun(ctx context.Context, logger *slog.Logger, workflowID, documentID string) error {
	runCtx := ctx

	var span trace.Span

	if w.tracer != nil {
		runCtx, span = otelhelper.StartSpan(ctx, w.tracer, "workflow.run",
			attribute.String(otelhelper.WorkflowIDKey, workflowID),
			attribute.String(otelhelper.DocumentIDKey, documentID),
			attribute.String(otelhelper.ServiceIDKey, w.id),
		)
		defer span.End()
	}

	runID, status, err := w.executor.Execute(runCtx, workflowID, documentID)
	if err != nil {
		if span != nil {
			otelhelper.RecordFailure(span, err)
		}

		return err
	}

	if span != nil {
		span.SetAttributes(attribute.String(otelhelper.RunIDKey, runID))
	}

	logger.InfoContext(ctx, "Workflow run finished", "workflow_id", workflowID, "run_id", runID, "status", status)

	return nil
}

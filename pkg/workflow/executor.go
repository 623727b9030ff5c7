// Package workflow contains the run orchestrator: it walks a workflow's
// node graph for one document, executes each activated step and records the
// run's lifecycle.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docpipe/docpipe/pkg/eventbus"
	"github.com/docpipe/docpipe/pkg/events"
	"github.com/docpipe/docpipe/pkg/graph"
	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/notifier"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
	"github.com/docpipe/docpipe/pkg/registry"
	"github.com/google/uuid"
)

// Executor runs one workflow against one document, strictly sequentially.
// A new run row is created per Execute call and finalized exactly once on
// every exit path.
type Executor struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	errNotifier protocol.Notifier
	publisher   eventbus.EventPublisher
}

func NewExecutor(
	logger *slog.Logger,
	p persistence.Persistence,
	reg *registry.Registry,
	errNotifier protocol.Notifier,
	publisher eventbus.EventPublisher,
) *Executor {
	return &Executor{
		logger:      logger.With("module", "workflow_executor"),
		persistence: p,
		registry:    reg,
		errNotifier: errNotifier,
		publisher:   publisher,
	}
}

// Execute walks the workflow graph for the given document and returns the
// run id and its terminal status. An error return means the run could not
// even be started; once a run row exists every failure is captured in the
// run itself.
func (e *Executor) Execute(ctx context.Context, workflowID, documentID string) (string, models.RunStatus, error) {
	logger := e.logger.With("workflow_id", workflowID, "document_id", documentID)

	wf, err := e.persistence.WorkflowRepository().WorkflowByID(ctx, workflowID)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	runID, err := newID()
	if err != nil {
		return "", "", err
	}

	run := &models.WorkflowRun{
		ID:         runID,
		WorkflowID: workflowID,
		DocumentID: documentID,
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	if err := e.persistence.RunRepository().CreateRun(ctx, run); err != nil {
		return "", "", fmt.Errorf("failed to create run: %w", err)
	}

	logger = logger.With("run_id", runID)
	logger.InfoContext(ctx, "Starting workflow run")

	e.publish(ctx, runID, events.RunStarted{
		BaseEvent:  e.baseEvent(events.RunStartedEvent, wf),
		RunID:      runID,
		DocumentID: documentID,
	})

	status := e.runSteps(ctx, logger, wf, run)

	finishedAt := time.Now().UTC()
	if err := e.persistence.RunRepository().FinalizeRun(ctx, runID, status, finishedAt); err != nil {
		logger.ErrorContext(ctx, "Failed to finalize run", "error", err)

		return runID, status, fmt.Errorf("failed to finalize run %s: %w", runID, err)
	}

	logger.InfoContext(ctx, "Finished workflow run", "status", status, "duration", finishedAt.Sub(run.StartedAt))

	return runID, status, nil
}

// runSteps executes the graph loop and returns the terminal run status. It
// never returns an error: every failure inside the loop is recorded as a
// failed step and collapses to a failed run.
func (e *Executor) runSteps(ctx context.Context, logger *slog.Logger, wf *models.Workflow, run *models.WorkflowRun) models.RunStatus {
	g := graph.Build(wf.Nodes, wf.Edges)

	ordered, excluded := g.Sort()
	if len(excluded) > 0 {
		logger.WarnContext(ctx, "Dropping nodes unreachable by topological order", "node_ids", excluded)
	}

	tracker := graph.NewActivationTracker(g)
	execCtx := models.NewExecutionContext(wf.ID, run.ID, run.DocumentID, wf.OrgID)

	started := time.Now().UTC()
	status := models.RunStatusCompleted

	for _, node := range ordered {
		if !tracker.ShouldRun(node.ID) {
			continue
		}

		execCtx.CurrentStep++

		stepLogger := logger.With("node_id", node.ID, "node_type", node.Type, "step_order", execCtx.CurrentStep)
		stepLogger.InfoContext(ctx, "Executing node")

		e.appendLog(ctx, stepLogger, &models.WorkflowLog{
			WorkflowRunID: run.ID,
			StepOrder:     execCtx.CurrentStep,
			NodeID:        node.ID,
			Status:        models.StepStatusRunning,
			Message:       fmt.Sprintf("executing %s node", node.Type),
		})

		result := e.executeStep(ctx, node, execCtx)

		e.appendLog(ctx, stepLogger, &models.WorkflowLog{
			WorkflowRunID: run.ID,
			StepOrder:     execCtx.CurrentStep,
			NodeID:        node.ID,
			Status:        result.Status,
			Message:       result.Message,
			Data:          result.Data,
		})

		switch result.Status {
		case models.StepStatusPaused:
			stepLogger.InfoContext(ctx, "Run paused", "message", result.Message)
			e.publish(ctx, run.ID, events.RunPaused{
				BaseEvent:  e.baseEvent(events.RunPausedEvent, wf),
				RunID:      run.ID,
				DocumentID: run.DocumentID,
				NodeID:     node.ID,
			})

			return models.RunStatusPaused
		case models.StepStatusFailed:
			stepLogger.ErrorContext(ctx, "Node failed", "message", result.Message)
			e.notifyWorkflowError(ctx, stepLogger, wf, run, node, result.Message)
			e.publish(ctx, run.ID, events.RunFailed{
				BaseEvent:  e.baseEvent(events.RunFailedEvent, wf),
				RunID:      run.ID,
				DocumentID: run.DocumentID,
				NodeID:     node.ID,
				Error:      result.Message,
				Duration:   time.Since(started),
			})

			return models.RunStatusFailed
		case models.StepStatusSuccess:
			tracker.Activate(graph.SelectEdges(node, result, g.Outgoing[node.ID]))
		}
	}

	e.publish(ctx, run.ID, events.RunCompleted{
		BaseEvent:  e.baseEvent(events.RunCompletedEvent, wf),
		RunID:      run.ID,
		DocumentID: run.DocumentID,
		Duration:   time.Since(started),
	})

	return status
}

// executeStep builds and invokes one step, converting creation errors,
// execution errors and panics into failed step results so the loop's exit
// semantics stay uniform.
func (e *Executor) executeStep(ctx context.Context, node *models.Node, execCtx *models.ExecutionContext) (result *models.StepResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.Failed(fmt.Sprintf("step panicked: %v", r))
		}
	}()

	step, err := e.registry.CreateStep(ctx, node.Type, node.ID, node.Config)
	if err != nil {
		return models.Failed(fmt.Sprintf("failed to create step: %s", err))
	}

	result, err = step.Execute(ctx, execCtx)
	if err != nil {
		return models.Failed(err.Error())
	}

	if result == nil {
		return models.Failed("step returned no result")
	}

	return result
}

// notifyWorkflowError sends the workflow-error email on a best-effort
// basis. A notification failure is logged and swallowed so it never masks
// the step failure that triggered it.
func (e *Executor) notifyWorkflowError(ctx context.Context, logger *slog.Logger, wf *models.Workflow, run *models.WorkflowRun, node *models.Node, message string) {
	if e.errNotifier == nil {
		return
	}

	prefs, err := e.persistence.NotificationPreferenceRepository().PreferencesByOrg(ctx, wf.OrgID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load notification preferences for error notification", "error", err)

		return
	}

	recipients := make([]string, 0, len(prefs))

	for _, pref := range prefs {
		if pref.Wants(models.NotificationEventWorkflowError) && pref.Email != "" {
			recipients = append(recipients, pref.Email)
		}
	}

	if len(recipients) == 0 {
		return
	}

	email, err := notifier.RenderNotificationEmail(models.NotificationEventWorkflowError, map[string]any{
		"workflow_name":   wf.Name,
		"workflow_run_id": run.ID,
		"document_id":     run.DocumentID,
		"node_id":         node.ID,
		"error":           message,
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to render error notification", "error", err)

		return
	}

	if _, err := e.errNotifier.Send(ctx, protocol.Notification{
		Event:   models.NotificationEventWorkflowError,
		To:      recipients,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to send error notification", "error", err)
	}
}

func (e *Executor) appendLog(ctx context.Context, logger *slog.Logger, entry *models.WorkflowLog) {
	entry.CreatedAt = time.Now().UTC()

	if id, err := newID(); err == nil {
		entry.ID = id
	}

	if err := e.persistence.RunRepository().AppendLog(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "Failed to append run log", "error", err)
	}
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Executor) baseEvent(eventType events.EventType, wf *models.Workflow) events.BaseEvent {
	id, _ := newID()

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		OrgID:      wf.OrgID,
		WorkflowID: wf.ID,
	}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	return id.String(), nil
}

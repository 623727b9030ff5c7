package workflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/eventbus"
	"github.com/docpipe/docpipe/pkg/events"
	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence/file"
	"github.com/docpipe/docpipe/pkg/protocol"
	"github.com/docpipe/docpipe/pkg/registry"
)

// stubFactory builds steps whose results are scripted per node id, so
// tests control every branch the orchestrator can take.
type stubFactory struct {
	results map[string]*models.StepResult
	errs    map[string]error
}

type stubStep struct {
	result *models.StepResult
	err    error
}

func (s *stubStep) Execute(_ context.Context, _ *models.ExecutionContext) (*models.StepResult, error) {
	return s.result, s.err
}

func (f *stubFactory) Create(_ context.Context, nodeID string, _ map[string]any) (protocol.Step, error) {
	return &stubStep{result: f.results[nodeID], err: f.errs[nodeID]}, nil
}

func (f *stubFactory) ID() string             { return "stub" }
func (f *stubFactory) Name() string           { return "Stub" }
func (f *stubFactory) Description() string    { return "scripted step for orchestrator tests" }
func (f *stubFactory) Schema() map[string]any { return nil }

type recordingPublisher struct {
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.events = append(p.events, event)

	return nil
}

type recordingSender struct {
	sent []protocol.Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, notification protocol.Notification) (string, error) {
	s.sent = append(s.sent, notification)

	return "msg-1", s.err
}

func node(id string) *models.Node {
	return &models.Node{ID: id, Type: "stub"}
}

func edge(source, target, handle string) *models.Edge {
	return &models.Edge{ID: source + "-" + target, Source: source, Target: target, SourceHandle: handle}
}

func newTestExecutor(
	t *testing.T,
	p *file.Persistence,
	factory *stubFactory,
	sender protocol.Notifier,
	publisher eventbus.EventPublisher,
) *Executor {
	t.Helper()

	logger := slog.Default()
	reg := registry.NewRegistry(logger)
	reg.RegisterStep(factory)

	return NewExecutor(logger, p, reg, sender, publisher)
}

func saveWorkflow(t *testing.T, p *file.Persistence, nodes []*models.Node, edges []*models.Edge) *models.Workflow {
	t.Helper()

	wf := &models.Workflow{
		ID:     "wf-1",
		OrgID:  "org-1",
		Name:   "invoice processing",
		Active: true,
		Nodes:  nodes,
		Edges:  edges,
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(context.Background(), wf))

	return wf
}

func TestExecutor_LinearRunCompletes(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p,
		[]*models.Node{node("ingest"), node("extract"), node("export")},
		[]*models.Edge{edge("ingest", "extract", ""), edge("extract", "export", "")},
	)

	factory := &stubFactory{results: map[string]*models.StepResult{
		"ingest":  models.Success("ok", nil),
		"extract": models.Success("ok", nil),
		"export":  models.Success("ok", nil),
	}}

	publisher := &recordingPublisher{}
	executor := newTestExecutor(t, p, factory, nil, publisher)

	ctx := context.Background()

	runID, status, err := executor.Execute(ctx, "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, status)

	run, err := p.RunRepository().RunByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	require.NotNil(t, run.FinishedAt)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	logs, err := p.RunRepository().LogsByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 6)

	for i := 0; i < 3; i++ {
		running, terminal := logs[2*i], logs[2*i+1]
		assert.Equal(t, i+1, running.StepOrder)
		assert.Equal(t, i+1, terminal.StepOrder)
		assert.Equal(t, models.StepStatusRunning, running.Status)
		assert.Equal(t, models.StepStatusSuccess, terminal.Status)
		assert.Equal(t, running.NodeID, terminal.NodeID)
	}

	require.Len(t, publisher.events, 2)
	assert.Equal(t, events.RunStartedEvent, publisher.events[0].GetType())
	assert.Equal(t, events.RunCompletedEvent, publisher.events[1].GetType())
}

func TestExecutor_BranchSelectionSkipsUntakenPath(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p,
		[]*models.Node{node("gate"), node("approve"), node("reject")},
		[]*models.Edge{
			edge("gate", "approve", "true"),
			edge("gate", "reject", "false"),
		},
	)

	factory := &stubFactory{results: map[string]*models.StepResult{
		"gate":   models.Success("rule failed", map[string]any{models.DataKeyPassed: false}),
		"reject": models.Success("ok", nil),
	}}

	executor := newTestExecutor(t, p, factory, nil, nil)

	ctx := context.Background()

	runID, status, err := executor.Execute(ctx, "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, status)

	logs, err := p.RunRepository().LogsByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 4)

	assert.Equal(t, "gate", logs[0].NodeID)
	assert.Equal(t, "reject", logs[2].NodeID)
	assert.Equal(t, 2, logs[2].StepOrder)

	for _, entry := range logs {
		assert.NotEqual(t, "approve", entry.NodeID)
	}
}

func TestExecutor_PausedStepStopsRun(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p,
		[]*models.Node{node("extract"), node("review"), node("export")},
		[]*models.Edge{edge("extract", "review", ""), edge("review", "export", "")},
	)

	factory := &stubFactory{results: map[string]*models.StepResult{
		"extract": models.Success("ok", nil),
		"review":  models.Paused("awaiting review", nil),
	}}

	publisher := &recordingPublisher{}
	executor := newTestExecutor(t, p, factory, nil, publisher)

	ctx := context.Background()

	runID, status, err := executor.Execute(ctx, "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPaused, status)

	run, err := p.RunRepository().RunByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPaused, run.Status)
	require.NotNil(t, run.FinishedAt)

	logs, err := p.RunRepository().LogsByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, models.StepStatusPaused, logs[3].Status)

	for _, entry := range logs {
		assert.NotEqual(t, "export", entry.NodeID)
	}

	assert.Equal(t, events.RunPausedEvent, publisher.events[len(publisher.events)-1].GetType())
}

func TestExecutor_FailedStepNotifiesAndStops(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p,
		[]*models.Node{node("extract"), node("export")},
		[]*models.Edge{edge("extract", "export", "")},
	)

	require.NoError(t, p.NotificationPreferenceRepository().(*file.PreferenceRepository).SavePreferences(
		context.Background(), "org-1", []*models.NotificationPreference{
			{OrgID: "org-1", Email: "oncall@acme.test", WorkflowError: true},
		}))

	factory := &stubFactory{results: map[string]*models.StepResult{
		"extract": models.Failed("provider timeout"),
	}}

	sender := &recordingSender{}
	executor := newTestExecutor(t, p, factory, sender, nil)

	ctx := context.Background()

	runID, status, err := executor.Execute(ctx, "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, status)

	run, err := p.RunRepository().RunByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, models.NotificationEventWorkflowError, sender.sent[0].Event)
	assert.Equal(t, []string{"oncall@acme.test"}, sender.sent[0].To)

	logs, err := p.RunRepository().LogsByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.StepStatusFailed, logs[1].Status)
	assert.Equal(t, "provider timeout", logs[1].Message)
}

func TestExecutor_NotificationFailureDoesNotMaskRunStatus(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p, []*models.Node{node("extract")}, nil)

	require.NoError(t, p.NotificationPreferenceRepository().(*file.PreferenceRepository).SavePreferences(
		context.Background(), "org-1", []*models.NotificationPreference{
			{OrgID: "org-1", Email: "oncall@acme.test", WorkflowError: true},
		}))

	factory := &stubFactory{results: map[string]*models.StepResult{
		"extract": models.Failed("provider timeout"),
	}}

	sender := &recordingSender{err: errors.New("smtp unavailable")}
	executor := newTestExecutor(t, p, factory, sender, nil)

	_, status, err := executor.Execute(context.Background(), "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, status)
}

func TestExecutor_StepErrorBecomesFailedRun(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p, []*models.Node{node("extract")}, nil)

	factory := &stubFactory{
		results: map[string]*models.StepResult{},
		errs:    map[string]error{"extract": errors.New("connection reset")},
	}

	executor := newTestExecutor(t, p, factory, nil, nil)

	ctx := context.Background()

	runID, status, err := executor.Execute(ctx, "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, status)

	logs, err := p.RunRepository().LogsByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Contains(t, logs[1].Message, "connection reset")
}

func TestExecutor_UnregisteredNodeTypeFailsRun(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	saveWorkflow(t, p, []*models.Node{{ID: "mystery", Type: "teleport"}}, nil)

	factory := &stubFactory{results: map[string]*models.StepResult{}}
	executor := newTestExecutor(t, p, factory, nil, nil)

	ctx := context.Background()

	runID, status, err := executor.Execute(ctx, "wf-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, status)

	logs, err := p.RunRepository().LogsByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Contains(t, logs[1].Message, "not registered")
}

func TestExecutor_UnknownWorkflowErrors(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	factory := &stubFactory{results: map[string]*models.StepResult{}}
	executor := newTestExecutor(t, p, factory, nil, nil)

	_, _, err := executor.Execute(context.Background(), "wf-missing", "doc-1")
	require.Error(t, err)
}

//go:build integration
// +build integration

package postgresql

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

var postgresContainer *postgres.PostgresContainer

func TestMain(m *testing.M) {
	code := m.Run()

	if postgresContainer != nil {
		_ = postgresContainer.Terminate(context.Background())
	}

	os.Exit(code)
}

func setupTestDB(t *testing.T) (*Persistence, context.Context) {
	ctx := context.Background()

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error
		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("docpipe_test"),
			postgres.WithUsername("docpipe"),
			postgres.WithPassword("docpipe"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	cleanupDB(t, databaseURL)

	return p, ctx
}

func cleanupDB(t *testing.T, databaseURL string) {
	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(context.Background(), `
		TRUNCATE TABLE workflows, workflow_nodes, workflow_edges, documents,
			extractions, extraction_fields, extraction_tokens, workflow_runs,
			workflow_logs, notification_preferences, audit_log CASCADE`)
	require.NoError(t, err)
}

func seedTestDocument(t *testing.T, ctx context.Context, p *Persistence) *models.Document {
	t.Helper()

	document := &models.Document{
		ID:       uuid.New().String(),
		OrgID:    "org-1",
		Filename: "invoice.pdf",
		MimeType: "application/pdf",
		Status:   models.DocumentStatusUploaded,
	}
	require.NoError(t, p.DocumentRepository().SaveDocument(ctx, document))

	return document
}

func TestWorkflowRepository_RoundTrip(t *testing.T) {
	p, ctx := setupTestDB(t)

	wf := &models.Workflow{
		ID:      uuid.New().String(),
		OrgID:   "org-1",
		Name:    "invoice processing",
		DocType: "invoice",
		Active:  true,
		Nodes: []*models.Node{
			{ID: "ingest", Type: models.NodeTypeUpload, PositionX: 10, PositionY: 20},
			{ID: "extract", Type: models.NodeTypeExtract},
			{ID: "gate", Type: models.NodeTypeRule, Config: map[string]any{"confidence_threshold": 0.85}},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "ingest", Target: "extract"},
			{ID: "e2", Source: "extract", Target: "gate", SourceHandle: ""},
		},
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, wf))

	loaded, err := p.WorkflowRepository().WorkflowByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, loaded.Name)
	require.Len(t, loaded.Nodes, 3)
	require.Len(t, loaded.Edges, 2)

	var gate *models.Node

	for _, node := range loaded.Nodes {
		if node.ID == "gate" {
			gate = node
		}
	}

	require.NotNil(t, gate)
	assert.Equal(t, models.NodeTypeRule, gate.Type)
	assert.InDelta(t, 0.85, gate.Config["confidence_threshold"], 0.0001)

	all, err := p.WorkflowRepository().Workflows(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWorkflowRepository_SaveReplacesGraph(t *testing.T) {
	p, ctx := setupTestDB(t)

	wf := &models.Workflow{
		ID:    uuid.New().String(),
		OrgID: "org-1",
		Name:  "invoice processing",
		Nodes: []*models.Node{
			{ID: "ingest", Type: models.NodeTypeUpload},
			{ID: "extract", Type: models.NodeTypeExtract},
		},
		Edges: []*models.Edge{{ID: "e1", Source: "ingest", Target: "extract"}},
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, wf))

	wf.Nodes = []*models.Node{{ID: "ingest", Type: models.NodeTypeUpload}}
	wf.Edges = nil
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, wf))

	loaded, err := p.WorkflowRepository().WorkflowByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 1)
	assert.Empty(t, loaded.Edges)
}

func TestWorkflowRepository_DeleteHidesWorkflow(t *testing.T) {
	p, ctx := setupTestDB(t)

	wf := &models.Workflow{
		ID:    uuid.New().String(),
		OrgID: "org-1",
		Name:  "invoice processing",
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, wf))
	require.NoError(t, p.WorkflowRepository().DeleteWorkflow(ctx, wf.ID))

	_, err := p.WorkflowRepository().WorkflowByID(ctx, wf.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestDocumentRepository_StatusLifecycle(t *testing.T) {
	p, ctx := setupTestDB(t)

	document := seedTestDocument(t, ctx, p)

	require.NoError(t, p.DocumentRepository().UpdateDocumentStatus(ctx, document.ID, models.DocumentStatusApproved))

	loaded, err := p.DocumentRepository().DocumentByID(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusApproved, loaded.Status)

	approved, err := p.DocumentRepository().DocumentsByStatus(ctx, "org-1", models.DocumentStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, document.ID, approved[0].ID)

	rejected, err := p.DocumentRepository().DocumentsByStatus(ctx, "org-1", models.DocumentStatusRejected)
	require.NoError(t, err)
	assert.Empty(t, rejected)
}

func TestExtractionRepository_DuplicateInsertRejected(t *testing.T) {
	p, ctx := setupTestDB(t)

	document := seedTestDocument(t, ctx, p)

	first := &models.Extraction{
		ID:         uuid.New().String(),
		DocumentID: document.ID,
		FullText:   "Invoice INV-42",
	}
	require.NoError(t, p.ExtractionRepository().SaveExtraction(ctx, first))

	second := &models.Extraction{
		ID:         uuid.New().String(),
		DocumentID: document.ID,
	}
	err := p.ExtractionRepository().SaveExtraction(ctx, second)
	require.ErrorIs(t, err, persistence.ErrExtractionAlreadyExists)

	fields := []*models.Field{
		{ID: uuid.New().String(), ExtractionID: first.ID, Key: "invoice_number", Value: "INV-42", Confidence: 0.95, Page: 1},
		{ID: uuid.New().String(), ExtractionID: first.ID, Key: "total_amount", Value: "120.50", Confidence: 0.80, Page: 1},
	}
	require.NoError(t, p.ExtractionRepository().SaveFields(ctx, fields))

	loaded, err := p.ExtractionRepository().FieldsByDocumentID(ctx, document.ID)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestRunRepository_FinalizeAndLogs(t *testing.T) {
	p, ctx := setupTestDB(t)

	document := seedTestDocument(t, ctx, p)

	wf := &models.Workflow{ID: uuid.New().String(), OrgID: "org-1", Name: "invoice processing"}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, wf))

	run := &models.WorkflowRun{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		DocumentID: document.ID,
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.RunRepository().CreateRun(ctx, run))

	for order := 1; order <= 2; order++ {
		for _, status := range []models.StepStatus{models.StepStatusRunning, models.StepStatusSuccess} {
			require.NoError(t, p.RunRepository().AppendLog(ctx, &models.WorkflowLog{
				ID:            uuid.New().String(),
				WorkflowRunID: run.ID,
				StepOrder:     order,
				NodeID:        "node",
				Status:        status,
				Message:       "ok",
			}))
		}
	}

	finishedAt := time.Now().UTC()
	require.NoError(t, p.RunRepository().FinalizeRun(ctx, run.ID, models.RunStatusCompleted, finishedAt))

	loaded, err := p.RunRepository().RunByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.FinishedAt)

	logs, err := p.RunRepository().LogsByRunID(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, 1, logs[0].StepOrder)
	assert.Equal(t, 2, logs[3].StepOrder)
	assert.Equal(t, models.StepStatusSuccess, logs[3].Status)
}

func TestRunRepository_RunNotFound(t *testing.T) {
	p, ctx := setupTestDB(t)

	_, err := p.RunRepository().RunByID(ctx, uuid.New().String())
	require.Error(t, err)
	assert.True(t, persistence.IsRunNotFound(err))
}

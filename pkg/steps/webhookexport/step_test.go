package webhookexport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence/file"
)

func seedDocument(t *testing.T, p *file.Persistence) string {
	t.Helper()

	ctx := context.Background()

	document := &models.Document{
		ID:       "doc-1",
		OrgID:    "org-1",
		Filename: "invoice.pdf",
		Status:   models.DocumentStatusApproved,
	}
	require.NoError(t, p.DocumentRepository().SaveDocument(ctx, document))

	extraction := &models.Extraction{ID: "ext-1", DocumentID: document.ID, FullText: "Invoice INV-42"}
	require.NoError(t, p.ExtractionRepository().SaveExtraction(ctx, extraction))

	fields := []*models.Field{
		{ExtractionID: extraction.ID, Key: "invoice_number", Value: "INV-42", Confidence: 0.95},
	}
	require.NoError(t, p.ExtractionRepository().SaveFields(ctx, fields))

	return document.ID
}

func TestWebhookExportStep_DeliversPayload(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedDocument(t, p)

	var (
		gotMethod  string
		gotHeader  string
		gotPayload webhookPayload
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Api-Key")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	step := NewWebhookExportStep("node-webhook", map[string]any{
		"url":     server.URL,
		"method":  "put",
		"headers": map[string]any{"X-Api-Key": "secret"},
	}, p.DocumentRepository(), p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	require.Equal(t, models.StepStatusSuccess, result.Status)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, http.StatusOK, result.Data["status_code"])
	assert.Equal(t, `{"ok":true}`, result.Data["response_body"])

	require.NotNil(t, gotPayload.Document)
	assert.Equal(t, documentID, gotPayload.Document.ID)
	assert.Equal(t, "run-1", gotPayload.WorkflowRunID)
	require.Len(t, gotPayload.Fields, 1)
	assert.Equal(t, "invoice_number", gotPayload.Fields[0].Key)
}

func TestWebhookExportStep_NonSuccessStatusFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedDocument(t, p)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	step := NewWebhookExportStep("node-webhook", map[string]any{
		"url": server.URL,
	}, p.DocumentRepository(), p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
	assert.Equal(t, http.StatusBadGateway, result.Data["status_code"])
	assert.Equal(t, "upstream down", result.Data["response_body"])
}

func TestWebhookExportStep_UnreachableEndpointFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedDocument(t, p)

	step := NewWebhookExportStep("node-webhook", map[string]any{
		"url": "http://127.0.0.1:1/export",
	}, p.DocumentRepository(), p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
}

func TestWebhookExportStep_MissingURLFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	step := NewWebhookExportStep("node-webhook", map[string]any{},
		p.DocumentRepository(), p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", "doc-1", "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
}

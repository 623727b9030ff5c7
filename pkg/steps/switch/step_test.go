package switchstep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence/file"
)

func seedFields(t *testing.T, p *file.Persistence, fields []*models.Field) string {
	t.Helper()

	ctx := context.Background()

	extraction := &models.Extraction{ID: "ext-1", DocumentID: "doc-1"}
	require.NoError(t, p.ExtractionRepository().SaveExtraction(ctx, extraction))

	for _, field := range fields {
		field.ExtractionID = extraction.ID
	}

	require.NoError(t, p.ExtractionRepository().SaveFields(ctx, fields))

	return extraction.DocumentID
}

func TestSwitchStep_MatchesCase(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "doc_type", Value: "invoice", Confidence: 0.98},
	})

	step := NewSwitchStep("node-switch", map[string]any{
		"field": "doc_type",
		"cases": []any{"invoice", "receipt"},
	}, p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusSuccess, result.Status)
	assert.Equal(t, "invoice", result.Data[models.DataKeyBranch])
	assert.Equal(t, "invoice", result.Data["value"])
}

func TestSwitchStep_UnmatchedValueTakesDefault(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "doc_type", Value: "contract", Confidence: 0.98},
	})

	step := NewSwitchStep("node-switch", map[string]any{
		"field": "doc_type",
		"cases": []any{"invoice", "receipt"},
	}, p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusSuccess, result.Status)
	assert.Equal(t, DefaultBranch, result.Data[models.DataKeyBranch])
}

func TestSwitchStep_MissingFieldFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "doc_type", Value: "invoice", Confidence: 0.98},
	})

	step := NewSwitchStep("node-switch", map[string]any{
		"field": "vendor_name",
	}, p.ExtractionRepository())

	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
	assert.Contains(t, result.Message, "vendor_name")
}

func TestSwitchStep_NoFieldConfiguredFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	step := NewSwitchStep("node-switch", map[string]any{}, p.ExtractionRepository())
	execCtx := models.NewExecutionContext("wf-1", "run-1", "doc-1", "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.Equal(t, models.StepStatusFailed, result.Status)
}

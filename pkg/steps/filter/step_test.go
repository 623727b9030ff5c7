package filter

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

func runFilter(t *testing.T, p *file.Persistence, documentID string, config map[string]any) *models.StepResult {
	t.Helper()

	step := NewFilterStep("node-filter", config, p.ExtractionRepository())
	execCtx := models.NewExecutionContext("wf-1", "run-1", documentID, "org-1")

	result, err := step.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	return result
}

func TestFilterStep_IncludeModeKeepsMatches(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "total_amount", Value: "250.00", Confidence: 0.97},
	})

	result := runFilter(t, p, documentID, map[string]any{
		"field":           "total_amount",
		"filter_operator": "gt",
		"filter_value":    "100",
	})

	assert.Equal(t, models.StepStatusSuccess, result.Status)
	assert.Equal(t, true, result.Data[models.DataKeyInclude])
	assert.Equal(t, true, result.Data["matched"])
}

func TestFilterStep_ExcludeModeInvertsMatch(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "total_amount", Value: "250.00", Confidence: 0.97},
	})

	result := runFilter(t, p, documentID, map[string]any{
		"field":           "total_amount",
		"filter_operator": "gt",
		"filter_value":    "100",
		"filter_mode":     "exclude",
	})

	assert.Equal(t, false, result.Data[models.DataKeyInclude])
	assert.Equal(t, true, result.Data["matched"])
}

func TestFilterStep_NonNumericOrderingExcludes(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "vendor_name", Value: "Acme GmbH", Confidence: 0.97},
	})

	result := runFilter(t, p, documentID, map[string]any{
		"field":           "vendor_name",
		"filter_operator": "gt",
		"filter_value":    "100",
	})

	assert.Equal(t, models.StepStatusSuccess, result.Status)
	assert.Equal(t, false, result.Data[models.DataKeyInclude])
}

func TestFilterStep_MissingFieldFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	documentID := seedFields(t, p, []*models.Field{
		{Key: "total_amount", Value: "250.00", Confidence: 0.97},
	})

	result := runFilter(t, p, documentID, map[string]any{
		"field":           "vat_number",
		"filter_operator": "eq",
		"filter_value":    "DE123",
	})

	assert.Equal(t, models.StepStatusFailed, result.Status)
}

func TestFilterStep_MissingConfigFails(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	result := runFilter(t, p, "doc-1", map[string]any{"field": "total_amount"})

	assert.Equal(t, models.StepStatusFailed, result.Status)
}

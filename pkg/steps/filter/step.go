// Package filter provides the include/exclude gating step for workflow
// execution.
package filter

import (
	"context"
	"fmt"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

// Filter modes. Include keeps documents whose field matches the condition,
// exclude keeps the ones that do not.
const (
	ModeInclude = "include"
	ModeExclude = "exclude"
)

// FilterStep evaluates a single condition against one extraction field and
// decides whether the document continues down the include or the exclude
// edge.
type FilterStep struct {
	nodeID      string
	field       string
	operator    models.Operator
	value       string
	mode        string
	extractions persistence.ExtractionRepository
}

func NewFilterStep(nodeID string, config map[string]any, extractions persistence.ExtractionRepository) *FilterStep {
	step := &FilterStep{
		nodeID:      nodeID,
		mode:        ModeInclude,
		extractions: extractions,
	}

	if field, ok := config["field"].(string); ok {
		step.field = field
	}

	if operator, ok := config["filter_operator"].(string); ok {
		step.operator = models.Operator(operator)
	}

	if value, ok := config["filter_value"].(string); ok {
		step.value = value
	}

	if mode, ok := config["filter_mode"].(string); ok && mode == ModeExclude {
		step.mode = ModeExclude
	}

	return step
}

func (s *FilterStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	if s.field == "" || s.operator == "" {
		return models.Failed("filter step requires a field and an operator"), nil
	}

	fields, err := execCtx.Fields(execCtx.DocumentID, func() ([]*models.Field, error) {
		return s.extractions.FieldsByDocumentID(ctx, execCtx.DocumentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction fields: %w", err)
	}

	var fieldValue string

	found := false

	for _, field := range fields {
		if field.Key == s.field {
			fieldValue = field.Value
			found = true

			break
		}
	}

	if !found {
		return models.Failed(fmt.Sprintf("field %q not found in extraction", s.field)), nil
	}

	matched := models.EvaluateCondition(fieldValue, s.operator, s.value)

	include := matched
	if s.mode == ModeExclude {
		include = !matched
	}

	message := "document included"
	if !include {
		message = "document excluded"
	}

	return models.Success(message, map[string]any{
		models.DataKeyInclude: include,
		"matched":             matched,
		"mode":                s.mode,
	}), nil
}

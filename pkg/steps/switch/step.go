// Package switchstep provides multi-way branching on an extraction field
// value.
package switchstep

import (
	"context"
	"fmt"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

// DefaultBranch is the branch taken when no configured case matches the
// field value.
const DefaultBranch = "default"

// SwitchStep compares a single extraction field against the configured
// cases and emits the matching case as the branch for edge selection.
// Unmatched values fall through to the default branch.
type SwitchStep struct {
	nodeID      string
	field       string
	cases       []string
	extractions persistence.ExtractionRepository
}

func NewSwitchStep(nodeID string, config map[string]any, extractions persistence.ExtractionRepository) *SwitchStep {
	step := &SwitchStep{
		nodeID:      nodeID,
		extractions: extractions,
	}

	if field, ok := config["field"].(string); ok {
		step.field = field
	}

	if cases, ok := config["cases"].([]any); ok {
		for _, raw := range cases {
			if c, ok := raw.(string); ok && c != "" {
				step.cases = append(step.cases, c)
			}
		}
	}

	return step
}

func (s *SwitchStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	if s.field == "" {
		return models.Failed("switch step requires a field to match on"), nil
	}

	fields, err := execCtx.Fields(execCtx.DocumentID, func() ([]*models.Field, error) {
		return s.extractions.FieldsByDocumentID(ctx, execCtx.DocumentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction fields: %w", err)
	}

	var value string

	found := false

	for _, field := range fields {
		if field.Key == s.field {
			value = field.Value
			found = true

			break
		}
	}

	if !found {
		return models.Failed(fmt.Sprintf("field %q not found in extraction", s.field)), nil
	}

	branch := DefaultBranch

	for _, c := range s.cases {
		if value == c {
			branch = c

			break
		}
	}

	return models.Success(
		fmt.Sprintf("matched branch %q", branch),
		map[string]any{
			models.DataKeyBranch: branch,
			"field":              s.field,
			"value":              value,
		},
	), nil
}

package rule

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// RuleStepFactory creates RuleStep instances.
type RuleStepFactory struct {
	persistence persistence.Persistence
}

// NewRuleStepFactory creates a new factory instance.
func NewRuleStepFactory(p persistence.Persistence) protocol.StepFactory {
	return &RuleStepFactory{persistence: p}
}

func (f *RuleStepFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Step, error) {
	return NewRuleStep(
		nodeID,
		config,
		f.persistence.DocumentRepository(),
		f.persistence.ExtractionRepository(),
	), nil
}

func (f *RuleStepFactory) ID() string {
	return models.NodeTypeRule
}

func (f *RuleStepFactory) Name() string {
	return "Rule"
}

func (f *RuleStepFactory) Description() string {
	return "Evaluates field conditions or a confidence threshold against the extraction and routes the document through the true/false branch accordingly."
}

func (f *RuleStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"conditions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":    map[string]any{"type": "string"},
						"operator": map[string]any{"type": "string", "enum": []string{"eq", "gt", "gte", "lt", "lte"}},
						"value":    map[string]any{"type": "string"},
					},
					"required": []string{"field", "operator", "value"},
				},
			},
			"logic": map[string]any{
				"type": "string",
				"enum": []string{"and", "or"},
			},
			"field": map[string]any{
				"type": "string",
			},
			"confidence_threshold": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"action_pass": map[string]any{
				"type": "string",
				"enum": []string{"approve", "continue"},
			},
			"action_fail": map[string]any{
				"type": "string",
				"enum": []string{"needs_review", "reject", "continue"},
			},
		},
	}
}

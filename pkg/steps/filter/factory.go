package filter

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// FilterStepFactory creates FilterStep instances.
type FilterStepFactory struct {
	persistence persistence.Persistence
}

// NewFilterStepFactory creates a new factory instance.
func NewFilterStepFactory(p persistence.Persistence) protocol.StepFactory {
	return &FilterStepFactory{persistence: p}
}

func (f *FilterStepFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Step, error) {
	return NewFilterStep(nodeID, config, f.persistence.ExtractionRepository()), nil
}

func (f *FilterStepFactory) ID() string {
	return models.NodeTypeFilter
}

func (f *FilterStepFactory) Name() string {
	return "Filter"
}

func (f *FilterStepFactory) Description() string {
	return "Gates documents on a single field condition, routing them down the include or exclude edge."
}

func (f *FilterStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type": "string",
			},
			"filter_operator": map[string]any{
				"type": "string",
				"enum": []string{"eq", "gt", "gte", "lt", "lte"},
			},
			"filter_value": map[string]any{
				"type": "string",
			},
			"filter_mode": map[string]any{
				"type": "string",
				"enum": []string{"include", "exclude"},
			},
		},
		"required": []string{"field", "filter_operator"},
	}
}

package switchstep

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// SwitchStepFactory creates SwitchStep instances.
type SwitchStepFactory struct {
	persistence persistence.Persistence
}

// NewSwitchStepFactory creates a new factory instance.
func NewSwitchStepFactory(p persistence.Persistence) protocol.StepFactory {
	return &SwitchStepFactory{persistence: p}
}

func (f *SwitchStepFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Step, error) {
	return NewSwitchStep(nodeID, config, f.persistence.ExtractionRepository()), nil
}

func (f *SwitchStepFactory) ID() string {
	return models.NodeTypeSwitch
}

func (f *SwitchStepFactory) Name() string {
	return "Switch"
}

func (f *SwitchStepFactory) Description() string {
	return "Matches one extraction field against a list of cases and routes the document down the edge labelled with the matching case, or down the default edge."
}

func (f *SwitchStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type": "string",
			},
			"cases": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"field"},
	}
}

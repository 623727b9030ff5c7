package review

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// ReviewStepFactory creates ReviewStep instances.
type ReviewStepFactory struct {
	persistence persistence.Persistence
}

// NewReviewStepFactory creates a new factory instance.
func NewReviewStepFactory(p persistence.Persistence) protocol.StepFactory {
	return &ReviewStepFactory{persistence: p}
}

func (f *ReviewStepFactory) Create(_ context.Context, nodeID string, _ map[string]any) (protocol.Step, error) {
	return NewReviewStep(nodeID, f.persistence.DocumentRepository(), f.persistence.AuditRepository()), nil
}

func (f *ReviewStepFactory) ID() string {
	return models.NodeTypeReview
}

func (f *ReviewStepFactory) Name() string {
	return "Review"
}

func (f *ReviewStepFactory) Description() string {
	return "Marks the document as needing human review and pauses the run until it is re-triggered."
}

func (f *ReviewStepFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

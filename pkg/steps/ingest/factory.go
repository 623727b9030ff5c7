package ingest

import (
	"context"

	"github.com/docpipe/docpipe/pkg/protocol"
)

// IngestStepFactory creates IngestStep instances. One factory is registered
// per ingestion node type (upload, api_ingest, email_ingest).
type IngestStepFactory struct {
	nodeType string
	name     string
}

// NewIngestStepFactory creates a factory for one ingestion node type.
func NewIngestStepFactory(nodeType, name string) protocol.StepFactory {
	return &IngestStepFactory{nodeType: nodeType, name: name}
}

func (f *IngestStepFactory) Create(_ context.Context, nodeID string, _ map[string]any) (protocol.Step, error) {
	return NewIngestStep(nodeID, f.nodeType), nil
}

func (f *IngestStepFactory) ID() string {
	return f.nodeType
}

func (f *IngestStepFactory) Name() string {
	return f.name
}

func (f *IngestStepFactory) Description() string {
	return "Marks the workflow entry point for documents arriving via " + f.name + ". No processing happens here."
}

func (f *IngestStepFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

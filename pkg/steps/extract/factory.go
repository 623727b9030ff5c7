package extract

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// ExtractStepFactory creates ExtractStep instances.
type ExtractStepFactory struct {
	persistence persistence.Persistence
	extractor   protocol.Extractor
}

// NewExtractStepFactory creates a new factory instance.
func NewExtractStepFactory(p persistence.Persistence, extractor protocol.Extractor) protocol.StepFactory {
	return &ExtractStepFactory{persistence: p, extractor: extractor}
}

func (f *ExtractStepFactory) Create(_ context.Context, nodeID string, _ map[string]any) (protocol.Step, error) {
	return NewExtractStep(
		nodeID,
		f.persistence.DocumentRepository(),
		f.persistence.ExtractionRepository(),
		f.persistence.AuditRepository(),
		f.extractor,
	), nil
}

func (f *ExtractStepFactory) ID() string {
	return models.NodeTypeExtract
}

func (f *ExtractStepFactory) Name() string {
	return "Extract"
}

func (f *ExtractStepFactory) Description() string {
	return "Runs the extraction provider against the document and persists full text, fields and OCR tokens. Skips documents that already have an extraction."
}

func (f *ExtractStepFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

package csvexport

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// CSVExportStepFactory creates CSVExportStep instances.
type CSVExportStepFactory struct {
	persistence persistence.Persistence
	blobs       protocol.BlobStore
}

// NewCSVExportStepFactory creates a new factory instance.
func NewCSVExportStepFactory(p persistence.Persistence, blobs protocol.BlobStore) protocol.StepFactory {
	return &CSVExportStepFactory{persistence: p, blobs: blobs}
}

func (f *CSVExportStepFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Step, error) {
	return NewCSVExportStep(
		nodeID,
		config,
		f.persistence.DocumentRepository(),
		f.persistence.ExtractionRepository(),
		f.blobs,
	), nil
}

func (f *CSVExportStepFactory) ID() string {
	return models.NodeTypeCSVExport
}

func (f *CSVExportStepFactory) Name() string {
	return "CSV Export"
}

func (f *CSVExportStepFactory) Description() string {
	return "Writes the extraction fields to a CSV file in blob storage and marks the document exported."
}

func (f *CSVExportStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

// Package ingest provides passthrough steps for the upload, api_ingest and
// email_ingest node types.
package ingest

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
)

// IngestStep is a no-op entry point. The document is assumed already
// ingested by an external trigger before the run starts; these nodes exist
// so builders can anchor a workflow on its ingestion source.
type IngestStep struct {
	nodeID   string
	nodeType string
}

func NewIngestStep(nodeID, nodeType string) *IngestStep {
	return &IngestStep{nodeID: nodeID, nodeType: nodeType}
}

func (s *IngestStep) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	return models.Success("document ingested", map[string]any{
		"document_id": execCtx.DocumentID,
		"source":      s.nodeType,
	}), nil
}

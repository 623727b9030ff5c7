// Package csvexport writes a document's extraction fields to CSV in blob
// storage.
package csvexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// CSVExportStep renders the extraction fields as key,value,confidence rows,
// uploads the file under an org/document-scoped path and marks the document
// exported. Each invocation produces a new file; the step is deliberately
// not idempotent.
type CSVExportStep struct {
	nodeID      string
	fieldKeys   map[string]bool
	documents   persistence.DocumentRepository
	extractions persistence.ExtractionRepository
	blobs       protocol.BlobStore
}

func NewCSVExportStep(
	nodeID string,
	config map[string]any,
	documents persistence.DocumentRepository,
	extractions persistence.ExtractionRepository,
	blobs protocol.BlobStore,
) *CSVExportStep {
	step := &CSVExportStep{
		nodeID:      nodeID,
		documents:   documents,
		extractions: extractions,
		blobs:       blobs,
	}

	if keys, ok := config["fields"].([]any); ok {
		step.fieldKeys = make(map[string]bool, len(keys))

		for _, raw := range keys {
			if key, ok := raw.(string); ok && key != "" {
				step.fieldKeys[key] = true
			}
		}
	}

	return step
}

func (s *CSVExportStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	fields, err := execCtx.Fields(execCtx.DocumentID, func() ([]*models.Field, error) {
		return s.extractions.FieldsByDocumentID(ctx, execCtx.DocumentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction fields: %w", err)
	}

	if len(fields) == 0 {
		return models.Failed("no extraction fields to export"), nil
	}

	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"key", "value", "confidence"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	exported := 0

	for _, field := range fields {
		if len(s.fieldKeys) > 0 && !s.fieldKeys[field.Key] {
			continue
		}

		row := []string{field.Key, field.Value, strconv.FormatFloat(field.Confidence, 'f', 4, 64)}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}

		exported++
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	if exported == 0 {
		return models.Failed("field allow-list excluded every extraction field"), nil
	}

	path := fmt.Sprintf("exports/%s/%s/%d.csv", execCtx.OrgID, execCtx.DocumentID, time.Now().UTC().UnixMilli())

	if err := s.blobs.Upload(ctx, path, buf.Bytes(), "text/csv"); err != nil {
		return models.Failed(fmt.Sprintf("failed to upload csv: %s", err)), nil
	}

	if err := s.documents.UpdateDocumentStatus(ctx, execCtx.DocumentID, models.DocumentStatusExported); err != nil {
		return nil, fmt.Errorf("failed to mark document exported: %w", err)
	}

	return models.Success(
		fmt.Sprintf("exported %d fields to %s", exported, path),
		map[string]any{
			"path":        path,
			"field_count": exported,
		},
	), nil
}

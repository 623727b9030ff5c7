// Package extract provides the extraction step for workflow execution.
package extract

import (
	"context"
	"fmt"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// ExtractStep runs the external extraction provider against the run's
// document and persists the result. Re-invocation short-circuits on the
// existing extraction, which is the only idempotency guard in the engine.
type ExtractStep struct {
	nodeID      string
	documents   persistence.DocumentRepository
	extractions persistence.ExtractionRepository
	audit       persistence.AuditRepository
	extractor   protocol.Extractor
}

func NewExtractStep(
	nodeID string,
	documents persistence.DocumentRepository,
	extractions persistence.ExtractionRepository,
	audit persistence.AuditRepository,
	extractor protocol.Extractor,
) *ExtractStep {
	return &ExtractStep{
		nodeID:      nodeID,
		documents:   documents,
		extractions: extractions,
		audit:       audit,
		extractor:   extractor,
	}
}

func (s *ExtractStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	existing, err := s.extractions.ExtractionByDocumentID(ctx, execCtx.DocumentID)
	if err == nil {
		return models.Success("document already extracted", map[string]any{
			"extraction_id": existing.ID,
			"deduplicated":  true,
		}), nil
	}

	if !persistence.IsExtractionNotFound(err) {
		return nil, fmt.Errorf("failed to check for existing extraction: %w", err)
	}

	document, err := s.documents.DocumentByID(ctx, execCtx.DocumentID)
	if err != nil {
		if persistence.IsDocumentNotFound(err) {
			return models.Failed(fmt.Sprintf("document %s not found", execCtx.DocumentID)), nil
		}

		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if err := s.documents.UpdateDocumentStatus(ctx, document.ID, models.DocumentStatusProcessing); err != nil {
		return nil, fmt.Errorf("failed to mark document processing: %w", err)
	}

	result, err := s.extractor.Extract(ctx, protocol.ExtractInput{
		Filename: document.Filename,
		MimeType: document.MimeType,
	})
	if err != nil {
		return models.Failed(fmt.Sprintf("extraction provider error: %v", err)), nil
	}

	extraction := &models.Extraction{
		DocumentID: document.ID,
		FullText:   result.FullText,
		Data:       result.Data,
	}

	err = s.extractions.SaveExtraction(ctx, extraction)
	if err != nil {
		if persistence.IsExtractionNotFound(err) {
			return nil, err
		}

		// A concurrent run won the insert race; fall back to its result.
		if err == persistence.ErrExtractionAlreadyExists {
			winner, lookupErr := s.extractions.ExtractionByDocumentID(ctx, document.ID)
			if lookupErr != nil {
				return nil, fmt.Errorf("failed to load concurrent extraction: %w", lookupErr)
			}

			return models.Success("document already extracted", map[string]any{
				"extraction_id": winner.ID,
				"deduplicated":  true,
			}), nil
		}

		return nil, fmt.Errorf("failed to save extraction: %w", err)
	}

	fields := make([]*models.Field, 0, len(result.Fields))
	for _, f := range result.Fields {
		fields = append(fields, &models.Field{
			ExtractionID: extraction.ID,
			Key:          f.Key,
			Value:        f.Value,
			Confidence:   f.Confidence,
			BBox:         f.BBox,
			Page:         f.Page,
		})
	}

	if err := s.extractions.SaveFields(ctx, fields); err != nil {
		return nil, fmt.Errorf("failed to save extraction fields: %w", err)
	}

	tokens := make([]*models.Token, 0, len(result.Tokens))
	for _, t := range result.Tokens {
		tokens = append(tokens, &models.Token{
			ExtractionID: extraction.ID,
			Page:         t.Page,
			Text:         t.Text,
			BBox:         t.BBox,
			LineNumber:   t.LineNumber,
			BlockNumber:  t.BlockNumber,
			Confidence:   t.Confidence,
		})
	}

	if err := s.extractions.SaveTokens(ctx, tokens); err != nil {
		return nil, fmt.Errorf("failed to save extraction tokens: %w", err)
	}

	auditErr := s.audit.AppendAudit(ctx, &models.AuditEntry{
		OrgID:      execCtx.OrgID,
		Action:     "document.extracted",
		EntityType: "document",
		EntityID:   document.ID,
		Details: map[string]any{
			"extraction_id":   extraction.ID,
			"field_count":     len(fields),
			"token_count":     len(tokens),
			"workflow_run_id": execCtx.WorkflowRunID,
		},
	})
	if auditErr != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", auditErr)
	}

	return models.Success("document extracted", map[string]any{
		"extraction_id": extraction.ID,
		"field_count":   len(fields),
		"token_count":   len(tokens),
	}), nil
}

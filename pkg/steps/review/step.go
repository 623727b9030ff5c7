// Package review provides the human-in-the-loop pause step.
package review

import (
	"context"
	"fmt"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

// ReviewStep marks the document for human review and pauses the run. It is
// the only step that returns a paused result; the run resumes through a
// later manual re-trigger once a reviewer has acted.
type ReviewStep struct {
	nodeID    string
	documents persistence.DocumentRepository
	audit     persistence.AuditRepository
}

func NewReviewStep(nodeID string, documents persistence.DocumentRepository, audit persistence.AuditRepository) *ReviewStep {
	return &ReviewStep{
		nodeID:    nodeID,
		documents: documents,
		audit:     audit,
	}
}

func (s *ReviewStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	if err := s.documents.UpdateDocumentStatus(ctx, execCtx.DocumentID, models.DocumentStatusNeedsReview); err != nil {
		return nil, fmt.Errorf("failed to mark document for review: %w", err)
	}

	if err := s.audit.AppendAudit(ctx, &models.AuditEntry{
		OrgID:      execCtx.OrgID,
		Action:     "document.review_requested",
		EntityType: "document",
		EntityID:   execCtx.DocumentID,
		Details: map[string]any{
			"workflow_run_id": execCtx.WorkflowRunID,
			"node_id":         s.nodeID,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	return models.Paused("document awaiting human review", map[string]any{
		"document_status": string(models.DocumentStatusNeedsReview),
	}), nil
}

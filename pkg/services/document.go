package services

import (
	"context"
	"fmt"
	"time"

	"github.com/docpipe/docpipe/pkg/eventbus"
	"github.com/docpipe/docpipe/pkg/events"
	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when a document is not found.
var ErrDocumentNotFound = persistence.ErrDocumentNotFound

// Document is the service layer over ingested documents: ingestion, review
// decisions and the audit trail around both.
type Document struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
}

// NewDocument creates a new document service.
func NewDocument(p persistence.Persistence, publisher eventbus.EventPublisher) *Document {
	return &Document{
		persistence: p,
		publisher:   publisher,
	}
}

// Ingest persists a newly arrived document and announces it on the event
// bus so the runner picks it up.
func (d *Document) Ingest(ctx context.Context, document *models.Document, source string) (*models.Document, error) {
	if document == nil {
		return nil, ErrDocumentNil
	}

	if document.OrgID == "" {
		return nil, ErrEmptyOrgID
	}

	if document.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate document id: %w", err)
		}

		document.ID = id.String()
	}

	now := time.Now().UTC()
	document.Status = models.DocumentStatusUploaded
	document.CreatedAt = now
	document.UpdatedAt = now

	if err := d.persistence.DocumentRepository().SaveDocument(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if err := d.persistence.AuditRepository().AppendAudit(ctx, &models.AuditEntry{
		OrgID:      document.OrgID,
		Action:     "document.ingested",
		EntityType: "document",
		EntityID:   document.ID,
		Details:    map[string]any{"source": source, "filename": document.Filename},
	}); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if d.publisher != nil {
		eventID, _ := uuid.NewV7()

		err := d.publisher.Publish(ctx, document.ID, events.DocumentReceived{
			BaseEvent: events.BaseEvent{
				ID:        eventID.String(),
				Type:      events.DocumentReceivedEvent,
				Timestamp: now,
				OrgID:     document.OrgID,
			},
			DocumentID: document.ID,
			Filename:   document.Filename,
			MimeType:   document.MimeType,
			Source:     source,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to publish document received event: %w", err)
		}
	}

	return document, nil
}

// FetchByID retrieves a document by its ID.
func (d *Document) FetchByID(ctx context.Context, id string) (*models.Document, error) {
	return d.persistence.DocumentRepository().DocumentByID(ctx, id)
}

// Decide records a human review decision. Approved is the only decision
// that can move a needs_review document forward; anything else rejects it.
func (d *Document) Decide(ctx context.Context, documentID, reviewer string, approved bool) error {
	document, err := d.persistence.DocumentRepository().DocumentByID(ctx, documentID)
	if err != nil {
		return err
	}

	status := models.DocumentStatusRejected
	action := "document.rejected"

	if approved {
		status = models.DocumentStatusApproved
		action = "document.approved"
	}

	if err := d.persistence.DocumentRepository().UpdateDocumentStatus(ctx, documentID, status); err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	return d.persistence.AuditRepository().AppendAudit(ctx, &models.AuditEntry{
		OrgID:      document.OrgID,
		Action:     action,
		EntityType: "document",
		EntityID:   documentID,
		Details:    map[string]any{"reviewer": reviewer},
	})
}

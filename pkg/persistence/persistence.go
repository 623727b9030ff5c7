// Package persistence provides the data storage abstraction layer for
// workflows, documents, extractions and runs.
package persistence

import (
	"context"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
)

// Persistence aggregates the narrow per-entity repositories behind one
// handle, so binaries wire a single backend while consumers depend only on
// the repositories they use.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	DocumentRepository() DocumentRepository
	ExtractionRepository() ExtractionRepository
	RunRepository() RunRepository
	NotificationPreferenceRepository() NotificationPreferenceRepository
	AuditRepository() AuditRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type WorkflowRepository interface {
	Workflows(ctx context.Context, orgID string) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
}

type DocumentRepository interface {
	DocumentByID(ctx context.Context, id string) (*models.Document, error)
	DocumentsByStatus(ctx context.Context, orgID string, status models.DocumentStatus) ([]*models.Document, error)
	SaveDocument(ctx context.Context, document *models.Document) error
	UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error
}

type ExtractionRepository interface {
	// ExtractionByDocumentID returns ErrExtractionNotFound when the document
	// has not been extracted yet.
	ExtractionByDocumentID(ctx context.Context, documentID string) (*models.Extraction, error)
	SaveExtraction(ctx context.Context, extraction *models.Extraction) error
	SaveFields(ctx context.Context, fields []*models.Field) error
	SaveTokens(ctx context.Context, tokens []*models.Token) error
	FieldsByDocumentID(ctx context.Context, documentID string) ([]*models.Field, error)
}

type RunRepository interface {
	CreateRun(ctx context.Context, run *models.WorkflowRun) error
	// FinalizeRun persists the terminal status and finished_at pair. Called
	// exactly once per run, on every exit path.
	FinalizeRun(ctx context.Context, runID string, status models.RunStatus, finishedAt time.Time) error
	RunByID(ctx context.Context, id string) (*models.WorkflowRun, error)
	AppendLog(ctx context.Context, log *models.WorkflowLog) error
	LogsByRunID(ctx context.Context, runID string) ([]*models.WorkflowLog, error)
}

type NotificationPreferenceRepository interface {
	PreferencesByOrg(ctx context.Context, orgID string) ([]*models.NotificationPreference, error)
}

type AuditRepository interface {
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
}

// Package web provides HTTP request and response types for the document
// workflow API.
package web

import "github.com/docpipe/docpipe/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new
// workflow.
type CreateWorkflowRequest struct {
	OrgID   string         `json:"org_id"   validate:"required"`
	Name    string         `json:"name"     validate:"required,min=3"`
	DocType string         `json:"doc_type"`
	Active  bool           `json:"active"`
	Nodes   []*models.Node `json:"nodes"    validate:"required,min=1,dive"`
	Edges   []*models.Edge `json:"edges"    validate:"dive"`
}

// UpdateWorkflowRequest represents the request body for updating an
// existing workflow. Nil fields are left unchanged; nodes and edges always
// replace the stored graph when present.
type UpdateWorkflowRequest struct {
	Name    *string        `json:"name,omitempty"     validate:"omitempty,min=3"`
	DocType *string        `json:"doc_type,omitempty"`
	Active  *bool          `json:"active,omitempty"`
	Nodes   []*models.Node `json:"nodes,omitempty"    validate:"omitempty,min=1,dive"`
	Edges   []*models.Edge `json:"edges,omitempty"    validate:"dive"`
}

// IngestDocumentRequest represents the request body for registering a
// document arriving through the API.
type IngestDocumentRequest struct {
	OrgID    string `json:"org_id"    validate:"required"`
	Filename string `json:"filename"  validate:"required"`
	MimeType string `json:"mime_type"`
	Source   string `json:"source"    validate:"omitempty,oneof=upload api_ingest email_ingest"`
}

// DecideDocumentRequest records a human review decision.
type DecideDocumentRequest struct {
	Approved bool   `json:"approved"`
	Reviewer string `json:"reviewer" validate:"required,email"`
}

// StartRunRequest starts a workflow run against a document.
type StartRunRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
}

// StartRunResponse carries the run identity and its terminal status; runs
// execute synchronously within the request.
type StartRunResponse struct {
	RunID  string           `json:"run_id"`
	Status models.RunStatus `json:"status"`
}

package models

import "time"

// DocumentStatus represents the review lifecycle state of a document.
type DocumentStatus string

const (
	DocumentStatusUploaded    DocumentStatus = "uploaded"
	DocumentStatusProcessing  DocumentStatus = "processing"
	DocumentStatusNeedsReview DocumentStatus = "needs_review"
	DocumentStatusApproved    DocumentStatus = "approved"
	DocumentStatusRejected    DocumentStatus = "rejected"
	DocumentStatusExported    DocumentStatus = "exported"
)

// Document represents one ingested scanned document.
type Document struct {
	ID        string         `json:"id"`
	OrgID     string         `json:"org_id"   validate:"required"`
	Filename  string         `json:"filename" validate:"required"`
	MimeType  string         `json:"mime_type"`
	ModelID   *string        `json:"model_id,omitempty"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

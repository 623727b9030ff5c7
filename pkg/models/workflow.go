// Package models defines the core domain models for document workflow automation
package models

import "time"

// Workflow represents an organization-scoped document automation pipeline.
type Workflow struct {
	ID        string     `json:"id"`
	OrgID     string     `json:"org_id"     validate:"required"`
	Name      string     `json:"name"       validate:"required,min=3"`
	DocType   string     `json:"doc_type"`
	Active    bool       `json:"active"`
	Nodes     []*Node    `json:"nodes"`
	Edges     []*Edge    `json:"edges"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

package models

// NotificationEvent identifies the kind of notification being sent.
type NotificationEvent string

const (
	NotificationEventDocumentApproved NotificationEvent = "document_approved"
	NotificationEventNeedsReview      NotificationEvent = "needs_review"
	NotificationEventWorkflowError    NotificationEvent = "workflow_error"
)

// NotificationPreference stores a user's per-event opt-in flags for one
// organization. Recipients for a notify step are the union of preference
// holders opted into the event and any statically configured addresses.
type NotificationPreference struct {
	OrgID            string `json:"org_id"`
	Email            string `json:"email"`
	DocumentApproved bool   `json:"document_approved"`
	NeedsReview      bool   `json:"needs_review"`
	WorkflowError    bool   `json:"workflow_error"`
}

// Wants reports whether this preference opts into the given event.
func (p *NotificationPreference) Wants(event NotificationEvent) bool {
	switch event {
	case NotificationEventDocumentApproved:
		return p.DocumentApproved
	case NotificationEventNeedsReview:
		return p.NeedsReview
	case NotificationEventWorkflowError:
		return p.WorkflowError
	default:
		return false
	}
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"org_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
}

package models

// Built-in step node types.
const (
	NodeTypeUpload        = "upload"
	NodeTypeAPIIngest     = "api_ingest"
	NodeTypeEmailIngest   = "email_ingest"
	NodeTypeExtract       = "extract"
	NodeTypeRule          = "rule"
	NodeTypeSwitch        = "switch"
	NodeTypeFilter        = "filter"
	NodeTypeReview        = "review"
	NodeTypeWebhookExport = "webhook_export"
	NodeTypeCSVExport     = "csv_export"
	NodeTypeNotify        = "notify"
)

// Node represents one step in a workflow graph. Config is a loosely typed
// bag at the persistence boundary; each step type parses the keys it needs.
type Node struct {
	ID        string         `json:"node_id"    validate:"required"`
	Type      string         `json:"type"       validate:"required"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
	Config    map[string]any `json:"config"`
}

// Edge is a directed connection between two nodes. SourceHandle
// disambiguates multiple outgoing edges from a branching node ("true",
// "false", a switch case label, "include", "exclude"). Edges without a
// handle are unconditional.
type Edge struct {
	ID           string `json:"edge_id" validate:"required"`
	Source       string `json:"source"  validate:"required"`
	Target       string `json:"target"  validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
}

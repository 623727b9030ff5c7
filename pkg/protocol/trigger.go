package protocol

import "context"

// TriggerCallback receives the ingest payload produced by a trigger. For
// document triggers the data carries at least document_id and workflow_id.
type TriggerCallback func(ctx context.Context, data map[string]any) error

// Trigger is a long-running source of workflow executions.
type Trigger interface {
	Start(ctx context.Context, callback TriggerCallback) error
	Stop(ctx context.Context) error
	Validate(ctx context.Context) error
}

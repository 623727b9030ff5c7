// Package events defines event types and structures for run lifecycle
// notifications.
package events

import (
	"time"

	"github.com/docpipe/docpipe/pkg/models"
)

type EventType string

// Kafka topic carrying every docpipe event.
const Topic = "docpipe.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Document ingestion events.
	DocumentReceivedEvent EventType = "document.received"

	// Run lifecycle events.
	RunStartedEvent   EventType = "run.started"
	RunCompletedEvent EventType = "run.completed"
	RunFailedEvent    EventType = "run.failed"
	RunPausedEvent    EventType = "run.paused"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	OrgID      string         `json:"org_id"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// DocumentReceived announces a newly ingested document awaiting workflow
// execution.
type DocumentReceived struct {
	BaseEvent

	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Source     string `json:"source"`
}

func (d DocumentReceived) GetType() EventType {
	return DocumentReceivedEvent
}

type RunStarted struct {
	BaseEvent

	RunID      string `json:"run_id"`
	DocumentID string `json:"document_id"`
}

func (r RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunCompleted struct {
	BaseEvent

	RunID      string        `json:"run_id"`
	DocumentID string        `json:"document_id"`
	Duration   time.Duration `json:"duration"`
}

func (r RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

type RunFailed struct {
	BaseEvent

	RunID      string        `json:"run_id"`
	DocumentID string        `json:"document_id"`
	NodeID     string        `json:"node_id,omitempty"`
	Error      string        `json:"error"`
	Duration   time.Duration `json:"duration"`
}

func (r RunFailed) GetType() EventType {
	return RunFailedEvent
}

// RunPaused marks a run waiting on human review. The run resumes through a
// later re-trigger, producing a fresh run.
type RunPaused struct {
	BaseEvent

	RunID      string `json:"run_id"`
	DocumentID string `json:"document_id"`
	NodeID     string `json:"node_id"`
}

func (r RunPaused) GetType() EventType {
	return RunPausedEvent
}

// ForRunStatus maps a terminal run status to its lifecycle event type.
func ForRunStatus(status models.RunStatus) EventType {
	switch status {
	case models.RunStatusCompleted:
		return RunCompletedEvent
	case models.RunStatusFailed:
		return RunFailedEvent
	case models.RunStatusPaused:
		return RunPausedEvent
	default:
		return RunStartedEvent
	}
}

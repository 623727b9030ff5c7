package models

import "time"

// RunStatus represents the lifecycle state of a workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusPaused    RunStatus = "paused"
)

// WorkflowRun is one execution instance of a workflow against one document.
// Created with status running and finalized exactly once.
type WorkflowRun struct {
	ID         string     `json:"id"`
	WorkflowID string     `json:"workflow_id" validate:"required"`
	DocumentID string     `json:"document_id" validate:"required"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// WorkflowLog is one append-only record per node attempt. Two records are
// written per attempt under normal operation: a running record, then a
// terminal one carrying the step's result payload. Ordering is by the
// explicit StepOrder assigned by the orchestrator.
type WorkflowLog struct {
	ID            string         `json:"id"`
	WorkflowRunID string         `json:"workflow_run_id"`
	StepOrder     int            `json:"step_order"`
	NodeID        string         `json:"node_id"`
	Status        StepStatus     `json:"status"`
	Message       string         `json:"message"`
	Data          map[string]any `json:"data,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

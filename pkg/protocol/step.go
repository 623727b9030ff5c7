// Package protocol defines the interfaces and contracts for pluggable
// workflow steps and their external collaborators.
package protocol

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
)

// Step is one executable node in a workflow run. Implementations report
// configuration and external-call problems through a failed StepResult; a
// returned error is reserved for unexpected failures and is treated by the
// orchestrator as a failed step.
type Step interface {
	Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error)
}

// StepFactory creates step instances and provides metadata about the step
// type.
type StepFactory interface {
	// Create creates a new step instance for a node with the given configuration
	Create(ctx context.Context, nodeID string, config map[string]any) (Step, error)

	// ID returns the node type this factory builds
	ID() string

	// Name returns the human-readable name for this step type
	Name() string

	// Description returns a description of what this step does
	Description() string

	// Schema returns the JSON schema for configuring this step
	Schema() map[string]any
}

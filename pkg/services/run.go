package services

import (
	"context"
	"fmt"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

// ErrRunNotFound is returned when a workflow run is not found.
var ErrRunNotFound = persistence.ErrRunNotFound

// Run is the read side over workflow runs and their step logs.
type Run struct {
	persistence persistence.Persistence
}

// NewRun creates a new run service.
func NewRun(p persistence.Persistence) *Run {
	return &Run{persistence: p}
}

// FetchByID retrieves one run.
func (r *Run) FetchByID(ctx context.Context, id string) (*models.WorkflowRun, error) {
	return r.persistence.RunRepository().RunByID(ctx, id)
}

// Logs returns a run's step log in step order.
func (r *Run) Logs(ctx context.Context, runID string) ([]*models.WorkflowLog, error) {
	if _, err := r.persistence.RunRepository().RunByID(ctx, runID); err != nil {
		return nil, err
	}

	logs, err := r.persistence.RunRepository().LogsByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run logs: %w", err)
	}

	return logs, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow is the service layer over workflow definitions. It owns
// structural validation: a stored workflow always has a name, at least one
// node, an ingest entry point, only registered node types and no dangling
// edges.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence, reg *registry.Registry) *Workflow {
	return &Workflow{
		persistence: p,
		registry:    reg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns the organization's workflows.
func (w *Workflow) List(ctx context.Context, orgID string) ([]*models.Workflow, error) {
	if orgID == "" {
		return nil, ErrEmptyOrgID
	}

	workflows, err := w.persistence.WorkflowRepository().Workflows(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// Create validates and persists a new workflow definition.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := w.validateWorkflow(workflow); err != nil {
		return nil, err
	}

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate workflow id: %w", err)
		}

		workflow.ID = id.String()
	}

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := w.persistence.WorkflowRepository().SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// Update validates and persists changes to an existing workflow.
func (w *Workflow) Update(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.WorkflowRepository().WorkflowByID(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}

	if err := w.validateWorkflow(workflow); err != nil {
		return nil, err
	}

	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// Delete soft-deletes a workflow.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.persistence.WorkflowRepository().DeleteWorkflow(ctx, id)
}

func (w *Workflow) validateWorkflow(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if err := w.validate.Struct(workflow); err != nil {
		return NewValidationError("validateWorkflow", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	if workflow.Name == "" {
		return ErrWorkflowNameRequired
	}

	if len(workflow.Nodes) == 0 {
		return ErrNodesRequired
	}

	known := make(map[string]bool, len(workflow.Nodes))
	hasEntry := false

	registered := make(map[string]bool)
	for _, nodeType := range w.registry.AvailableSteps() {
		registered[nodeType] = true
	}

	for _, node := range workflow.Nodes {
		known[node.ID] = true

		if !registered[node.Type] {
			return NewValidationError(
				"validateWorkflow",
				"UNKNOWN_NODE_TYPE",
				fmt.Sprintf("node %s has unknown type %q", node.ID, node.Type),
				ErrUnknownNodeType,
			)
		}

		switch node.Type {
		case models.NodeTypeUpload, models.NodeTypeAPIIngest, models.NodeTypeEmailIngest:
			hasEntry = true
		}
	}

	if !hasEntry {
		return ErrEntryNodeRequired
	}

	for _, edge := range workflow.Edges {
		if !known[edge.Source] || !known[edge.Target] {
			return NewValidationError(
				"validateWorkflow",
				"DANGLING_EDGE",
				fmt.Sprintf("edge %s connects missing nodes (%s -> %s)", edge.ID, edge.Source, edge.Target),
				ErrDanglingEdge,
			)
		}
	}

	return nil
}

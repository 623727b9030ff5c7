// Package registry provides step factory registration and creation for the
// workflow engine.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docpipe/docpipe/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Registry maps node types to their step factories.
type Registry struct {
	logger        *slog.Logger
	stepFactories map[string]protocol.StepFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:        logger,
		stepFactories: make(map[string]protocol.StepFactory),
	}
}

func (r *Registry) RegisterStep(factory protocol.StepFactory) {
	r.stepFactories[factory.ID()] = factory
}

// CreateStep validates the node configuration against the factory's schema
// and builds the step instance.
func (r *Registry) CreateStep(ctx context.Context, nodeType, nodeID string, config map[string]any) (protocol.Step, error) {
	factory, ok := r.stepFactories[nodeType]
	if !ok {
		return nil, fmt.Errorf("step type '%s' not registered", nodeType)
	}

	if err := validateConfig(factory.Schema(), config); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s node %s: %w", nodeType, nodeID, err)
	}

	return factory.Create(ctx, nodeID, config)
}

// AvailableSteps returns the registered node types.
func (r *Registry) AvailableSteps() []string {
	types := make([]string, 0, len(r.stepFactories))
	for nodeType := range r.stepFactories {
		types = append(types, nodeType)
	}

	return types
}

func validateConfig(schema map[string]any, config map[string]any) error {
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("configuration does not match schema: %s", strings.Join(details, "; "))
	}

	return nil
}

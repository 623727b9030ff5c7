package webhookexport

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// WebhookExportStepFactory creates WebhookExportStep instances.
type WebhookExportStepFactory struct {
	persistence persistence.Persistence
}

// NewWebhookExportStepFactory creates a new factory instance.
func NewWebhookExportStepFactory(p persistence.Persistence) protocol.StepFactory {
	return &WebhookExportStepFactory{persistence: p}
}

func (f *WebhookExportStepFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Step, error) {
	return NewWebhookExportStep(
		nodeID,
		config,
		f.persistence.DocumentRepository(),
		f.persistence.ExtractionRepository(),
	), nil
}

func (f *WebhookExportStepFactory) ID() string {
	return models.NodeTypeWebhookExport
}

func (f *WebhookExportStepFactory) Name() string {
	return "Webhook Export"
}

func (f *WebhookExportStepFactory) Description() string {
	return "Delivers the document and its extraction to an external HTTP endpoint with configurable method and headers."
}

func (f *WebhookExportStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":   "string",
				"format": "uri",
			},
			"method": map[string]any{
				"type": "string",
				"enum": []string{"POST", "PUT", "PATCH"},
			},
			"headers": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
		"required": []string{"url"},
	}
}

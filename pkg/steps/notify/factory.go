package notify

import (
	"context"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// NotifyStepFactory creates NotifyStep instances.
type NotifyStepFactory struct {
	persistence persistence.Persistence
	sender      protocol.Notifier
}

// NewNotifyStepFactory creates a new factory instance.
func NewNotifyStepFactory(p persistence.Persistence, sender protocol.Notifier) protocol.StepFactory {
	return &NotifyStepFactory{persistence: p, sender: sender}
}

func (f *NotifyStepFactory) Create(_ context.Context, nodeID string, config map[string]any) (protocol.Step, error) {
	return NewNotifyStep(
		nodeID,
		config,
		f.persistence.DocumentRepository(),
		f.persistence.NotificationPreferenceRepository(),
		f.sender,
	), nil
}

func (f *NotifyStepFactory) ID() string {
	return models.NodeTypeNotify
}

func (f *NotifyStepFactory) Name() string {
	return "Notify"
}

func (f *NotifyStepFactory) Description() string {
	return "Sends an event email to opted-in org members and statically configured recipients."
}

func (f *NotifyStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"event": map[string]any{
				"type": "string",
				"enum": []string{"document_approved", "needs_review", "workflow_error"},
			},
			"recipients": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "format": "email"},
			},
		},
	}
}

// Package notify resolves recipients and sends event emails through the
// notification provider.
package notify

import (
	"context"
	"fmt"
	"sort"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/notifier"
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/protocol"
)

// NotifyStep sends an event-specific email. Recipients are the union of
// org members whose preferences opt into the event and any statically
// configured addresses.
type NotifyStep struct {
	nodeID      string
	event       models.NotificationEvent
	recipients  []string
	documents   persistence.DocumentRepository
	preferences persistence.NotificationPreferenceRepository
	sender      protocol.Notifier
}

func NewNotifyStep(
	nodeID string,
	config map[string]any,
	documents persistence.DocumentRepository,
	preferences persistence.NotificationPreferenceRepository,
	sender protocol.Notifier,
) *NotifyStep {
	step := &NotifyStep{
		nodeID:      nodeID,
		event:       models.NotificationEventNeedsReview,
		documents:   documents,
		preferences: preferences,
		sender:      sender,
	}

	if event, ok := config["event"].(string); ok && event != "" {
		step.event = models.NotificationEvent(event)
	}

	if recipients, ok := config["recipients"].([]any); ok {
		for _, raw := range recipients {
			if email, ok := raw.(string); ok && email != "" {
				step.recipients = append(step.recipients, email)
			}
		}
	}

	return step
}

func (s *NotifyStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	recipients, err := s.resolveRecipients(ctx, execCtx.OrgID)
	if err != nil {
		return nil, err
	}

	if len(recipients) == 0 {
		return models.Failed(fmt.Sprintf("no recipients resolved for event %s", s.event)), nil
	}

	data := map[string]any{
		"document_id":     execCtx.DocumentID,
		"workflow_run_id": execCtx.WorkflowRunID,
	}

	if document, err := s.documents.DocumentByID(ctx, execCtx.DocumentID); err == nil {
		data["filename"] = document.Filename
	}

	email, err := notifier.RenderNotificationEmail(s.event, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render notification email: %w", err)
	}

	messageID, err := s.sender.Send(ctx, protocol.Notification{
		Event:   s.event,
		To:      recipients,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return models.Failed(fmt.Sprintf("failed to send notification: %s", err)), nil
	}

	return models.Success(
		fmt.Sprintf("notified %d recipients", len(recipients)),
		map[string]any{
			"event":      string(s.event),
			"recipients": len(recipients),
			"message_id": messageID,
		},
	), nil
}

func (s *NotifyStep) resolveRecipients(ctx context.Context, orgID string) ([]string, error) {
	prefs, err := s.preferences.PreferencesByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification preferences: %w", err)
	}

	seen := map[string]bool{}

	for _, pref := range prefs {
		if pref.Wants(s.event) && pref.Email != "" {
			seen[pref.Email] = true
		}
	}

	for _, email := range s.recipients {
		seen[email] = true
	}

	recipients := make([]string, 0, len(seen))
	for email := range seen {
		recipients = append(recipients, email)
	}

	sort.Strings(recipients)

	return recipients, nil
}

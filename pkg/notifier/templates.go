// Package notifier provides notification rendering and delivery.
package notifier

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/docpipe/docpipe/pkg/models"
)

// RenderedEmail is one event-specific email ready for delivery.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

type emailTemplate struct {
	subject string
	html    *template.Template
	text    *template.Template
}

var emailTemplates = map[models.NotificationEvent]emailTemplate{
	models.NotificationEventDocumentApproved: {
		subject: "Document approved: {{.filename}}",
		html: template.Must(template.New("document_approved_html").Parse(
			`<p>The document <strong>{{.filename}}</strong> was automatically approved.</p>` +
				`<p>Workflow run: {{.workflow_run_id}}</p>`)),
		text: template.Must(template.New("document_approved_text").Parse(
			"The document {{.filename}} was automatically approved.\nWorkflow run: {{.workflow_run_id}}\n")),
	},
	models.NotificationEventNeedsReview: {
		subject: "Document needs review: {{.filename}}",
		html: template.Must(template.New("needs_review_html").Parse(
			`<p>The document <strong>{{.filename}}</strong> needs manual review.</p>` +
				`{{if .reason}}<p>Reason: {{.reason}}</p>{{end}}` +
				`<p>Workflow run: {{.workflow_run_id}}</p>`)),
		text: template.Must(template.New("needs_review_text").Parse(
			"The document {{.filename}} needs manual review.\n{{if .reason}}Reason: {{.reason}}\n{{end}}Workflow run: {{.workflow_run_id}}\n")),
	},
	models.NotificationEventWorkflowError: {
		subject: "Workflow error: {{.workflow_name}}",
		html: template.Must(template.New("workflow_error_html").Parse(
			`<p>The workflow <strong>{{.workflow_name}}</strong> failed on node {{.node_id}} while processing document {{.document_id}}.</p>` +
				`<p>Error: {{.error}}</p>` +
				`<p>Workflow run: {{.workflow_run_id}}</p>`)),
		text: template.Must(template.New("workflow_error_text").Parse(
			"The workflow {{.workflow_name}} failed on node {{.node_id}} while processing document {{.document_id}}.\nError: {{.error}}\nWorkflow run: {{.workflow_run_id}}\n")),
	},
}

// RenderNotificationEmail renders the event-specific subject/html/text
// triple for a notification.
func RenderNotificationEmail(event models.NotificationEvent, data map[string]any) (*RenderedEmail, error) {
	tmpl, ok := emailTemplates[event]
	if !ok {
		return nil, fmt.Errorf("no email template for event %q", event)
	}

	subjectTmpl, err := template.New("subject").Parse(tmpl.subject)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject template: %w", err)
	}

	var subject, html, text bytes.Buffer

	if err := subjectTmpl.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("failed to render subject: %w", err)
	}

	if err := tmpl.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	if err := tmpl.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	return &RenderedEmail{
		Subject: subject.String(),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

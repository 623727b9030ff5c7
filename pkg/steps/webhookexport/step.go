// Package webhookexport delivers a document's extraction payload to an
// external HTTP endpoint.
package webhookexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

const (
	defaultTimeout = 30 * time.Second

	// maxLoggedBody caps how much of the endpoint's response is carried in
	// the step result, so one chatty endpoint cannot bloat the run log.
	maxLoggedBody = 1000
)

// WebhookExportStep POSTs the document, its extraction and fields to a
// configured URL. The HTTP method and extra headers are configurable.
type WebhookExportStep struct {
	nodeID      string
	url         string
	method      string
	headers     map[string]string
	documents   persistence.DocumentRepository
	extractions persistence.ExtractionRepository
	client      *http.Client
}

func NewWebhookExportStep(
	nodeID string,
	config map[string]any,
	documents persistence.DocumentRepository,
	extractions persistence.ExtractionRepository,
) *WebhookExportStep {
	step := &WebhookExportStep{
		nodeID:      nodeID,
		method:      http.MethodPost,
		headers:     map[string]string{},
		documents:   documents,
		extractions: extractions,
		client:      &http.Client{Timeout: defaultTimeout},
	}

	if url, ok := config["url"].(string); ok {
		step.url = url
	}

	if method, ok := config["method"].(string); ok && method != "" {
		step.method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for key, raw := range headers {
			if value, ok := raw.(string); ok {
				step.headers[key] = value
			}
		}
	}

	return step
}

type webhookPayload struct {
	Document      *models.Document   `json:"document"`
	Extraction    *models.Extraction `json:"extraction"`
	Fields        []*models.Field    `json:"fields"`
	WorkflowRunID string             `json:"workflow_run_id"`
	Timestamp     time.Time          `json:"timestamp"`
}

func (s *WebhookExportStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	if s.url == "" {
		return models.Failed("webhook export requires a url"), nil
	}

	document, err := s.documents.DocumentByID(ctx, execCtx.DocumentID)
	if err != nil {
		if persistence.IsDocumentNotFound(err) {
			return models.Failed(fmt.Sprintf("document %s not found", execCtx.DocumentID)), nil
		}

		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	extraction, err := s.extractions.ExtractionByDocumentID(ctx, execCtx.DocumentID)
	if err != nil && !persistence.IsExtractionNotFound(err) {
		return nil, fmt.Errorf("failed to load extraction: %w", err)
	}

	fields, err := execCtx.Fields(execCtx.DocumentID, func() ([]*models.Field, error) {
		return s.extractions.FieldsByDocumentID(ctx, execCtx.DocumentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction fields: %w", err)
	}

	payload, err := json.Marshal(webhookPayload{
		Document:      document,
		Extraction:    extraction,
		Fields:        fields,
		WorkflowRunID: execCtx.WorkflowRunID,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, s.method, s.url, bytes.NewReader(payload))
	if err != nil {
		return models.Failed(fmt.Sprintf("invalid webhook request: %s", err)), nil
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range s.headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Failed(fmt.Sprintf("webhook call failed: %s", err)), nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody+1))
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	data := map[string]any{
		"status_code":   resp.StatusCode,
		"response_body": string(body),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result := models.Failed(fmt.Sprintf("webhook returned status %d", resp.StatusCode))
		result.Data = data

		return result, nil
	}

	return models.Success(fmt.Sprintf("webhook delivered to %s", s.url), data), nil
}

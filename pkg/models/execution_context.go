package models

// ExecutionContext is the ephemeral per-run state handed to every step
// executor. Its lifetime is one Executor.Execute call; a fresh context is
// created for every run.
type ExecutionContext struct {
	WorkflowID    string `json:"workflow_id"`
	WorkflowRunID string `json:"workflow_run_id"`
	DocumentID    string `json:"document_id"`
	OrgID         string `json:"org_id"`
	CurrentStep   int    `json:"current_step"`

	fieldCache map[string][]*Field
}

func NewExecutionContext(workflowID, runID, documentID, orgID string) *ExecutionContext {
	return &ExecutionContext{
		WorkflowID:    workflowID,
		WorkflowRunID: runID,
		DocumentID:    documentID,
		OrgID:         orgID,
		fieldCache:    make(map[string][]*Field),
	}
}

// Fields returns the extraction fields for a document, loading them through
// load on first use and memoizing for the rest of the run. Multiple
// rule/switch/filter nodes commonly re-read the same field set; execution is
// sequential so the cache is never written concurrently.
func (c *ExecutionContext) Fields(documentID string, load func() ([]*Field, error)) ([]*Field, error) {
	if fields, ok := c.fieldCache[documentID]; ok {
		return fields, nil
	}

	fields, err := load()
	if err != nil {
		return nil, err
	}

	c.fieldCache[documentID] = fields

	return fields, nil
}

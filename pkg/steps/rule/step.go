// Package rule provides the rule evaluation step for workflow execution.
package rule

import (
	"context"
	"fmt"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/docpipe/docpipe/pkg/persistence"
)

const DefaultConfidenceThreshold = 0.90

// Actions applied to the document after a rule evaluates.
const (
	ActionApprove     = "approve"
	ActionContinue    = "continue"
	ActionNeedsReview = "needs_review"
	ActionReject      = "reject"
)

// RuleConfig is the parsed configuration for a rule node. When Conditions
// is empty the rule degrades to a confidence-threshold check over all
// fields, or over the single named Field when set.
type RuleConfig struct {
	Conditions          []models.RuleCondition
	Logic               models.ConditionLogic
	Field               string
	ConfidenceThreshold float64
	ActionPass          string
	ActionFail          string
}

// RuleStep evaluates declared conditions or a confidence gate over the
// document's extraction fields and applies the configured pass/fail action
// to the document status.
type RuleStep struct {
	nodeID      string
	config      RuleConfig
	documents   persistence.DocumentRepository
	extractions persistence.ExtractionRepository
}

func NewRuleStep(
	nodeID string,
	config map[string]any,
	documents persistence.DocumentRepository,
	extractions persistence.ExtractionRepository,
) *RuleStep {
	return &RuleStep{
		nodeID:      nodeID,
		config:      parseConfig(config),
		documents:   documents,
		extractions: extractions,
	}
}

func parseConfig(config map[string]any) RuleConfig {
	parsed := RuleConfig{
		Logic:               models.ConditionLogicAnd,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		ActionPass:          ActionContinue,
		ActionFail:          ActionNeedsReview,
	}

	if conditions, ok := config["conditions"].([]any); ok {
		for _, raw := range conditions {
			cond, ok := raw.(map[string]any)
			if !ok {
				continue
			}

			field, _ := cond["field"].(string)
			operator, _ := cond["operator"].(string)
			value, _ := cond["value"].(string)

			if field == "" || operator == "" {
				continue
			}

			parsed.Conditions = append(parsed.Conditions, models.RuleCondition{
				Field:    field,
				Operator: models.Operator(operator),
				Value:    value,
			})
		}
	}

	if logic, ok := config["logic"].(string); ok && logic == string(models.ConditionLogicOr) {
		parsed.Logic = models.ConditionLogicOr
	}

	if field, ok := config["field"].(string); ok {
		parsed.Field = field
	}

	if threshold, ok := config["confidence_threshold"].(float64); ok && threshold > 0 {
		parsed.ConfidenceThreshold = threshold
	}

	if action, ok := config["action_pass"].(string); ok && action != "" {
		parsed.ActionPass = action
	}

	if action, ok := config["action_fail"].(string); ok && action != "" {
		parsed.ActionFail = action
	}

	return parsed
}

func (s *RuleStep) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.StepResult, error) {
	fields, err := execCtx.Fields(execCtx.DocumentID, func() ([]*models.Field, error) {
		return s.extractions.FieldsByDocumentID(ctx, execCtx.DocumentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction fields: %w", err)
	}

	if len(fields) == 0 {
		return models.Failed("no extraction fields found for document"), nil
	}

	byKey := make(map[string]*models.Field, len(fields))
	for _, field := range fields {
		byKey[field.Key] = field
	}

	data := map[string]any{}

	var passed bool

	if len(s.config.Conditions) > 0 {
		passed, err = s.evaluateConditions(byKey)
		if err != nil {
			return models.Failed(err.Error()), nil
		}
	} else {
		var lowConf []string

		passed, lowConf, err = s.evaluateThreshold(fields, byKey)
		if err != nil {
			return models.Failed(err.Error()), nil
		}

		data["threshold"] = s.config.ConfidenceThreshold

		if len(lowConf) > 0 {
			data["low_conf_fields"] = lowConf
		}
	}

	data[models.DataKeyPassed] = passed

	if err := s.applyAction(ctx, execCtx.DocumentID, passed); err != nil {
		return nil, err
	}

	message := "rule passed"
	if !passed {
		message = "rule failed"
	}

	return models.Success(message, data), nil
}

func (s *RuleStep) evaluateConditions(byKey map[string]*models.Field) (bool, error) {
	results := make([]bool, 0, len(s.config.Conditions))

	for _, cond := range s.config.Conditions {
		field, ok := byKey[cond.Field]
		if !ok {
			return false, fmt.Errorf("field %q not found in extraction", cond.Field)
		}

		results = append(results, models.EvaluateCondition(field.Value, cond.Operator, cond.Value))
	}

	if s.config.Logic == models.ConditionLogicOr {
		for _, r := range results {
			if r {
				return true, nil
			}
		}

		return false, nil
	}

	for _, r := range results {
		if !r {
			return false, nil
		}
	}

	return true, nil
}

func (s *RuleStep) evaluateThreshold(fields []*models.Field, byKey map[string]*models.Field) (bool, []string, error) {
	if s.config.Field != "" {
		field, ok := byKey[s.config.Field]
		if !ok {
			return false, nil, fmt.Errorf("field %q not found in extraction", s.config.Field)
		}

		if field.Confidence < s.config.ConfidenceThreshold {
			return false, []string{field.Key}, nil
		}

		return true, nil, nil
	}

	var lowConf []string

	for _, field := range fields {
		if field.Confidence < s.config.ConfidenceThreshold {
			lowConf = append(lowConf, field.Key)
		}
	}

	return len(lowConf) == 0, lowConf, nil
}

func (s *RuleStep) applyAction(ctx context.Context, documentID string, passed bool) error {
	action := s.config.ActionFail
	if passed {
		action = s.config.ActionPass
	}

	var status models.DocumentStatus

	switch action {
	case ActionApprove:
		status = models.DocumentStatusApproved
	case ActionNeedsReview:
		status = models.DocumentStatusNeedsReview
	case ActionReject:
		status = models.DocumentStatusRejected
	case ActionContinue:
		return nil
	default:
		return nil
	}

	if err := s.documents.UpdateDocumentStatus(ctx, documentID, status); err != nil {
		return fmt.Errorf("failed to update document status to %s: %w", status, err)
	}

	return nil
}

package models

import "strconv"

// Operator is a comparison operator usable in rule and filter conditions.
type Operator string

const (
	OperatorEq  Operator = "eq"
	OperatorGt  Operator = "gt"
	OperatorGte Operator = "gte"
	OperatorLt  Operator = "lt"
	OperatorLte Operator = "lte"
)

// ConditionLogic combines multiple rule conditions.
type ConditionLogic string

const (
	ConditionLogicAnd ConditionLogic = "and"
	ConditionLogicOr  ConditionLogic = "or"
)

// RuleCondition is one declared comparison over an extraction field.
type RuleCondition struct {
	Field    string   `json:"field"    validate:"required"`
	Operator Operator `json:"operator" validate:"required"`
	Value    string   `json:"value"`
}

// EvaluateCondition compares value against target. Both operands are
// coerced to numbers first; when either side fails to coerce, eq falls back
// to string equality and the ordering operators evaluate to false. The
// evaluation is fail-closed: "abc" gt "5" is false, never an error.
func EvaluateCondition(value string, operator Operator, target string) bool {
	left, leftOK := toNumber(value)
	right, rightOK := toNumber(target)

	if leftOK && rightOK {
		switch operator {
		case OperatorEq:
			return left == right
		case OperatorGt:
			return left > right
		case OperatorGte:
			return left >= right
		case OperatorLt:
			return left < right
		case OperatorLte:
			return left <= right
		default:
			return false
		}
	}

	if operator == OperatorEq {
		return value == target
	}

	return false
}

func toNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

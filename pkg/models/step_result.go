package models

// StepStatus is the terminal status of one step attempt.
type StepStatus string

const (
	StepStatusRunning StepStatus = "running"
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
	StepStatusPaused  StepStatus = "paused"
)

// Branch decision keys recognized in StepResult.Data.
const (
	DataKeyPassed  = "passed"  // rule nodes, bool
	DataKeyBranch  = "branch"  // switch nodes, case label string
	DataKeyInclude = "include" // filter nodes, bool
)

// StepResult is the contract every step executor returns to the
// orchestrator. Data is the only channel through which a step communicates
// branching decisions.
type StepResult struct {
	Status  StepStatus     `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Success builds a success result with an optional data payload.
func Success(message string, data map[string]any) *StepResult {
	return &StepResult{Status: StepStatusSuccess, Message: message, Data: data}
}

// Failed builds a failed result. Configuration and external-call problems
// are reported this way rather than as errors, so the orchestrator logs
// them and finalizes the run instead of crashing.
func Failed(message string) *StepResult {
	return &StepResult{Status: StepStatusFailed, Message: message}
}

// Paused builds a paused result, the human-in-the-loop wait state.
func Paused(message string, data map[string]any) *StepResult {
	return &StepResult{Status: StepStatusPaused, Message: message, Data: data}
}

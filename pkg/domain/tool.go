package domain

import "time"

// ToolMetadata describes a registered clinical tool. Created once at
// registration and never mutated.
type ToolMetadata struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
}

// SubscriptionTier gates which tools a caller may see.
type SubscriptionTier string

const (
	TierFree          SubscriptionTier = "FREE"
	TierProfessional  SubscriptionTier = "PROFESSIONAL"
	TierInstitutional SubscriptionTier = "INSTITUTIONAL"
)

// ExecuteToolRequest is the per-call value object for a tool execution.
type ExecuteToolRequest struct {
	ToolID         string         `json:"tool_id"`
	Parameters     map[string]any `json:"parameters"`
	UserID         string         `json:"user_id"`
	ConversationID string         `json:"conversation_id"`
}

// ValidationResult reports the outcome of parameter validation.
// Validation never fails with an error; callers branch on Valid.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ToolOutput is what a clinical tool's domain logic produces on success.
// The execution engine wraps it into a ToolExecutionResult.
type ToolOutput struct {
	Data           map[string]any `json:"data"`
	Interpretation string         `json:"interpretation,omitempty"`
	Disclaimer     string         `json:"disclaimer,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// ToolExecutionResult is the terminal result of one tool execution.
// Immutable once returned; persistence is the audit sink's job.
type ToolExecutionResult struct {
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
	Interpretation  string         `json:"interpretation,omitempty"`
	Disclaimer      string         `json:"disclaimer,omitempty"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	Timestamp       time.Time      `json:"timestamp"`
}

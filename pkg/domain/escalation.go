package domain

import "time"

// Severity orders emergency classifications from least to most acute.
type Severity string

const (
	SeverityModerate Severity = "MODERATE"
	SeverityUrgent   Severity = "URGENT"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the ordering of a severity (higher is more acute).
// Unknown severities rank below MODERATE.
func (s Severity) Rank() int {
	switch s {
	case SeverityModerate:
		return 1
	case SeverityUrgent:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// Coarse maps a severity onto the coarsened label used for metrics.
func (s Severity) Coarse() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityUrgent:
		return "high"
	default:
		return "low"
	}
}

// Classification is the upstream intent/risk classifier's verdict on a query.
// The classifier itself is an external collaborator.
type Classification struct {
	Intent            string   `json:"intent"`
	IsEmergency       bool     `json:"is_emergency"`
	EmergencySeverity Severity `json:"emergency_severity,omitempty"`
	RiskLevel         string   `json:"risk_level,omitempty"`
	Confidence        float64  `json:"confidence,omitempty"`
}

// UserContext carries the request-scoped context of an emergency signal.
type UserContext struct {
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	Location       string    `json:"location,omitempty"`
}

// EscalationContext is constructed once per detected emergency signal.
type EscalationContext struct {
	Severity Severity    `json:"severity"`
	Category string      `json:"category"`
	Keywords []string    `json:"keywords,omitempty"`
	User     UserContext `json:"user"`
}

// ActionType identifies one kind of escalation action.
type ActionType string

const (
	ActionCall911               ActionType = "CALL_911"
	ActionNotifyMedicalDirector ActionType = "NOTIFY_MEDICAL_DIRECTOR"
	ActionPageOnCall            ActionType = "PAGE_ON_CALL"
	ActionRapidResponseTeam     ActionType = "RAPID_RESPONSE_TEAM"
	ActionActivateProtocol      ActionType = "ACTIVATE_PROTOCOL"
	ActionDocumentIncident      ActionType = "DOCUMENT_INCIDENT"
)

// EscalationAction is one step of an escalation plan. Priority 1 executes
// first; the plan is mutated in place only to mark execution.
type EscalationAction struct {
	Type        ActionType `json:"type"`
	Priority    int        `json:"priority"`
	Description string     `json:"description"`
	Executed    bool       `json:"executed"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// EscalationResult aggregates the outcome of one escalation. Terminal and
// immutable once returned; Actions contains only the actions that executed.
type EscalationResult struct {
	Escalated               bool               `json:"escalated"`
	IncidentID              string             `json:"incident_id"`
	Severity                Severity           `json:"severity"`
	Actions                 []EscalationAction `json:"actions"`
	Message                 string             `json:"message"`
	Recommendations         []string           `json:"recommendations"`
	RequiresImmediate911    bool               `json:"requires_immediate_911"`
	MedicalDirectorNotified bool               `json:"medical_director_notified"`
}

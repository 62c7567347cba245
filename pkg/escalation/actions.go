package escalation

import (
	"fmt"
	"sort"

	"github.com/caregate/caregate/pkg/domain"
)

// documentPriority keeps DOCUMENT_INCIDENT last regardless of the plan.
const documentPriority = 99

// planStep is one templated entry of a severity plan. Kept as data so new
// severities or actions are table additions, not branches.
type planStep struct {
	actionType  domain.ActionType
	priority    int
	description string
}

// severityPlans maps severity onto its ordered action plan.
// DOCUMENT_INCIDENT is appended to every plan by BuildPlan.
var severityPlans = map[domain.Severity][]planStep{
	domain.SeverityCritical: {
		{domain.ActionCall911, 1, "Emergency services (911) dispatch initiated"},
		{domain.ActionNotifyMedicalDirector, 2, "Medical director notified of critical emergency"},
		{domain.ActionRapidResponseTeam, 3, "Rapid response team activated"},
		{domain.ActionActivateProtocol, 4, ""}, // description filled per category
	},
	domain.SeverityUrgent: {
		{domain.ActionNotifyMedicalDirector, 1, "Medical director notified of urgent situation"},
		{domain.ActionPageOnCall, 2, "On-call clinician paged"},
		{domain.ActionActivateProtocol, 3, ""},
	},
	domain.SeverityModerate: {
		{domain.ActionNotifyMedicalDirector, 1, "Medical director notified for awareness"},
		{domain.ActionActivateProtocol, 2, ""},
	},
}

// protocolNames maps emergency categories onto the protocol activated by
// ACTIVATE_PROTOCOL. Unknown categories use the default.
var protocolNames = map[string]string{
	"cardiac":      "ACLS (Advanced Cardiac Life Support)",
	"respiratory":  "Respiratory Distress",
	"neurological": "Stroke Alert",
	"trauma":       "Trauma Activation",
	"sepsis":       "Sepsis Bundle",
	"psychiatric":  "Behavioral Health Crisis",
}

const defaultProtocol = "Emergency Management"

// ProtocolName resolves the protocol activated for a category.
func ProtocolName(category string) string {
	if name, ok := protocolNames[category]; ok {
		return name
	}
	return defaultProtocol
}

// BuildPlan constructs the priority-ordered action plan for a severity and
// category. The sort is stable so custom extensions with equal priorities
// keep insertion order.
func BuildPlan(severity domain.Severity, category string) []domain.EscalationAction {
	steps := severityPlans[severity]

	actions := make([]domain.EscalationAction, 0, len(steps)+1)
	for _, s := range steps {
		desc := s.description
		if s.actionType == domain.ActionActivateProtocol {
			desc = fmt.Sprintf("Activate %s protocol", ProtocolName(category))
		}
		actions = append(actions, domain.EscalationAction{
			Type:        s.actionType,
			Priority:    s.priority,
			Description: desc,
		})
	}

	actions = append(actions, domain.EscalationAction{
		Type:        domain.ActionDocumentIncident,
		Priority:    documentPriority,
		Description: "Incident documented for clinical and compliance review",
	})

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority < actions[j].Priority
	})
	return actions
}

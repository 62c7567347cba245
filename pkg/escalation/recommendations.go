package escalation

import "github.com/caregate/caregate/pkg/domain"

// severityGuidance is general guidance applied per severity level.
var severityGuidance = map[domain.Severity][]string{
	domain.SeverityCritical: {
		"Activate 911/emergency services immediately if not already done",
		"Begin life-saving interventions per protocol",
		"Do not leave the patient unattended",
	},
	domain.SeverityUrgent: {
		"Arrange urgent clinical evaluation within the hour",
		"Reassess vital signs every 15 minutes until evaluated",
	},
	domain.SeverityModerate: {
		"Arrange same-day clinical follow-up",
		"Advise the patient to seek immediate care if symptoms worsen",
	},
}

// categoryGuidance is curated clinical guidance per emergency category.
// Unknown categories contribute nothing beyond the severity guidance.
var categoryGuidance = map[string][]string{
	"cardiac": {
		"Obtain 12-lead ECG as soon as possible",
		"Give aspirin if no contraindication and ACS is suspected",
		"Prepare defibrillator access",
	},
	"respiratory": {
		"Assess airway patency and oxygen saturation",
		"Administer supplemental oxygen to target saturation",
		"Prepare for assisted ventilation if deteriorating",
	},
	"neurological": {
		"Record last-known-well time",
		"Perform rapid stroke screen (FAST)",
		"Check blood glucose to exclude hypoglycemia",
	},
	"trauma": {
		"Control external hemorrhage with direct pressure",
		"Maintain spinal precautions until cleared",
		"Monitor for signs of shock",
	},
	"sepsis": {
		"Draw blood cultures before antibiotics when possible",
		"Begin broad-spectrum antibiotics within the first hour",
		"Start fluid resuscitation and track lactate",
	},
}

const documentationReminder = "Document all assessments, interventions, and times in the clinical record"

// Recommendations builds the severity-driven guidance concatenated with
// category-specific guidance, always terminated with the documentation
// reminder.
func Recommendations(severity domain.Severity, category string) []string {
	recs := make([]string, 0, 8)
	recs = append(recs, severityGuidance[severity]...)
	recs = append(recs, categoryGuidance[category]...)
	recs = append(recs, documentationReminder)
	return recs
}

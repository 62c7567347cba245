package escalation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/caregate/caregate/pkg/domain"
)

const escalationDisclaimer = "This is an automated escalation. It does not replace direct clinical assessment."

const call911Block = "IF YOU ARE WITH THE PATIENT: CALL 911 NOW. Stay on the line and follow dispatcher instructions."

// BuildMessage assembles the clinical message for an escalation: severity
// header, numbered executed actions, standing disclaimer, and for CRITICAL
// severity an explicit call-911 instruction block.
func BuildMessage(severity domain.Severity, category string, executed []domain.EscalationAction) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s emergency escalation in progress.\n\n", severity, categoryLabel(category))

	if severity == domain.SeverityCritical {
		b.WriteString(call911Block)
		b.WriteString("\n\n")
	}

	b.WriteString("Actions taken:\n")
	for i, a := range executed {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Description)
	}

	b.WriteString("\n")
	b.WriteString(escalationDisclaimer)
	return b.String()
}

func categoryLabel(category string) string {
	if category == "" {
		return "Unspecified"
	}
	r, size := utf8.DecodeRuneInString(category)
	return string(unicode.ToUpper(r)) + category[size:]
}

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/schema"
)

const interactionDisclaimer = "Interaction data covers common high-risk pairs only and is not a substitute for a full pharmacy review."

// interaction severities, ordered from worst down.
const (
	severityContraindicated = "contraindicated"
	severityMajor           = "major"
	severityModerate        = "moderate"
)

type knownInteraction struct {
	severity    string
	description string
}

// interactionTable maps normalized "a|b" pairs (a < b lexicographically)
// onto curated interaction findings. Data, not code: new pairs are
// additions here.
var interactionTable = map[string]knownInteraction{
	pairKey("warfarin", "aspirin"):            {severityMajor, "Combined anticoagulant and antiplatelet effect markedly increases bleeding risk."},
	pairKey("warfarin", "ibuprofen"):          {severityMajor, "NSAIDs potentiate warfarin and injure gastric mucosa; bleeding risk increased."},
	pairKey("warfarin", "fluconazole"):        {severityMajor, "Fluconazole inhibits warfarin metabolism; INR may rise sharply."},
	pairKey("sildenafil", "nitroglycerin"):    {severityContraindicated, "Concurrent PDE5 inhibitor and nitrate can cause refractory hypotension."},
	pairKey("simvastatin", "clarithromycin"):  {severityMajor, "CYP3A4 inhibition raises statin levels; risk of rhabdomyolysis."},
	pairKey("lisinopril", "spironolactone"):   {severityModerate, "ACE inhibitor with potassium-sparing diuretic; monitor for hyperkalemia."},
	pairKey("digoxin", "amiodarone"):          {severityMajor, "Amiodarone raises digoxin levels; reduce digoxin dose and monitor."},
	pairKey("methotrexate", "trimethoprim"):   {severityMajor, "Additive antifolate effect; risk of severe myelosuppression."},
	pairKey("sertraline", "tramadol"):         {severityModerate, "Additive serotonergic effect; watch for serotonin syndrome."},
	pairKey("metformin", "iodinated_contrast"): {severityModerate, "Hold metformin around contrast administration; lactic acidosis risk with renal impairment."},
}

func pairKey(a, b string) string {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// InteractionChecker screens a medication list for known pairwise
// interactions.
type InteractionChecker struct {
	fields schema.Fields
}

// NewInteractionChecker creates the drug interaction checker.
func NewInteractionChecker() *InteractionChecker {
	return &InteractionChecker{
		fields: schema.Fields{
			{Name: "medications", Type: schema.SliceMin(schema.String(), 2), Required: true, Description: "Medication names to screen (at least two)"},
		},
	}
}

func (t *InteractionChecker) Metadata() domain.ToolMetadata {
	return domain.ToolMetadata{
		ID:          "drug_interaction_checker",
		Name:        "Drug Interaction Checker",
		Category:    "interaction",
		Description: "Screens a medication list for known pairwise drug-drug interactions",
	}
}

func (t *InteractionChecker) Schema() schema.Fields { return t.fields }

func (t *InteractionChecker) Validate(params map[string]any) domain.ValidationResult {
	return fromSchema(t.fields.Validate(params))
}

type interactionInput struct {
	Medications []string `param:"medications"`
}

func (t *InteractionChecker) Execute(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
	if err := t.fields.Validate(params).Err(); err != nil {
		return nil, err
	}
	var in interactionInput
	if err := schema.Decode(params, &in); err != nil {
		return nil, err
	}

	meds := make([]string, 0, len(in.Medications))
	for _, m := range in.Medications {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			meds = append(meds, m)
		}
	}
	sort.Strings(meds)

	var found []map[string]any
	var warnings []string
	worst := ""

	for i := 0; i < len(meds); i++ {
		for j := i + 1; j < len(meds); j++ {
			hit, ok := interactionTable[pairKey(meds[i], meds[j])]
			if !ok {
				continue
			}
			found = append(found, map[string]any{
				"drug_a":      meds[i],
				"drug_b":      meds[j],
				"severity":    hit.severity,
				"description": hit.description,
			})
			if severityRank(hit.severity) > severityRank(worst) {
				worst = hit.severity
			}
			if hit.severity == severityContraindicated || hit.severity == severityMajor {
				warnings = append(warnings, fmt.Sprintf("%s interaction: %s + %s", hit.severity, meds[i], meds[j]))
			}
		}
	}

	interpretation := "No known interactions among the screened medications."
	if len(found) > 0 {
		interpretation = fmt.Sprintf("%d interaction(s) found; worst severity: %s.", len(found), worst)
	}

	return &domain.ToolOutput{
		Data: map[string]any{
			"medication_count":  len(meds),
			"interactions":      found,
			"interaction_count": len(found),
			"worst_severity":    worst,
		},
		Interpretation: interpretation,
		Disclaimer:     interactionDisclaimer,
		Warnings:       warnings,
	}, nil
}

func severityRank(s string) int {
	switch s {
	case severityContraindicated:
		return 3
	case severityMajor:
		return 2
	case severityModerate:
		return 1
	default:
		return 0
	}
}

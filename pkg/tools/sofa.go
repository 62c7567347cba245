package tools

import (
	"context"
	"fmt"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/schema"
)

const sofaDisclaimer = "SOFA scoring supports, but does not replace, clinical judgment. Verify inputs against the current chart."

// SOFACalculator computes the Sequential Organ Failure Assessment score
// across six organ systems (0-4 each, 24 max).
type SOFACalculator struct {
	fields schema.Fields
}

// NewSOFACalculator creates the SOFA calculator.
func NewSOFACalculator() *SOFACalculator {
	return &SOFACalculator{
		fields: schema.Fields{
			{Name: "pao2_fio2_ratio", Type: schema.FloatMin(0), Required: true, Description: "PaO2/FiO2 ratio in mmHg"},
			{Name: "respiratory_support", Type: schema.Bool(), Description: "Patient is mechanically ventilated or on respiratory support"},
			{Name: "platelets", Type: schema.FloatMin(0), Required: true, Description: "Platelet count in 10^3/µL"},
			{Name: "bilirubin", Type: schema.FloatMin(0), Required: true, Description: "Total bilirubin in mg/dL"},
			{Name: "mean_arterial_pressure", Type: schema.FloatMin(0), Required: true, Description: "Mean arterial pressure in mmHg"},
			{Name: "vasopressor", Type: schema.Enum("none", "low", "moderate", "high"), Description: "Highest current vasopressor dose category"},
			{Name: "glasgow_coma_scale", Type: schema.IntRange(3, 15), Required: true, Description: "Glasgow Coma Scale (3-15)"},
			{Name: "creatinine", Type: schema.FloatMin(0), Required: true, Description: "Serum creatinine in mg/dL"},
		},
	}
}

func (t *SOFACalculator) Metadata() domain.ToolMetadata {
	return domain.ToolMetadata{
		ID:          "sofa_calculator",
		Name:        "SOFA Score Calculator",
		Category:    "severity_score",
		Description: "Sequential Organ Failure Assessment score across respiration, coagulation, liver, cardiovascular, CNS, and renal systems",
	}
}

func (t *SOFACalculator) Schema() schema.Fields { return t.fields }

func (t *SOFACalculator) Validate(params map[string]any) domain.ValidationResult {
	return fromSchema(t.fields.Validate(params))
}

type sofaInput struct {
	PaO2FiO2           float64 `param:"pao2_fio2_ratio"`
	RespiratorySupport bool    `param:"respiratory_support"`
	Platelets          float64 `param:"platelets"`
	Bilirubin          float64 `param:"bilirubin"`
	MAP                float64 `param:"mean_arterial_pressure"`
	Vasopressor        string  `param:"vasopressor"`
	GCS                int     `param:"glasgow_coma_scale"`
	Creatinine         float64 `param:"creatinine"`
}

func (t *SOFACalculator) Execute(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
	if err := t.fields.Validate(params).Err(); err != nil {
		return nil, err
	}
	var in sofaInput
	if err := schema.Decode(params, &in); err != nil {
		return nil, err
	}

	var warnings []string

	respiration := respirationScore(in.PaO2FiO2)
	if respiration > 2 && !in.RespiratorySupport {
		// Scores of 3-4 require respiratory support per the scoring rules.
		respiration = 2
		warnings = append(warnings, "respiration score capped at 2: PaO2/FiO2 below 200 without respiratory support reported")
	}

	components := map[string]int{
		"respiration":    respiration,
		"coagulation":    coagulationScore(in.Platelets),
		"liver":          liverScore(in.Bilirubin),
		"cardiovascular": cardiovascularScore(in.MAP, in.Vasopressor),
		"cns":            cnsScore(in.GCS),
		"renal":          renalScore(in.Creatinine),
	}

	total := 0
	for _, s := range components {
		total += s
	}

	return &domain.ToolOutput{
		Data: map[string]any{
			"total_score": total,
			"components":  components,
		},
		Interpretation: sofaInterpretation(total),
		Disclaimer:     sofaDisclaimer,
		Warnings:       warnings,
	}, nil
}

func respirationScore(ratio float64) int {
	switch {
	case ratio < 100:
		return 4
	case ratio < 200:
		return 3
	case ratio < 300:
		return 2
	case ratio < 400:
		return 1
	default:
		return 0
	}
}

func coagulationScore(platelets float64) int {
	switch {
	case platelets < 20:
		return 4
	case platelets < 50:
		return 3
	case platelets < 100:
		return 2
	case platelets < 150:
		return 1
	default:
		return 0
	}
}

func liverScore(bilirubin float64) int {
	switch {
	case bilirubin >= 12.0:
		return 4
	case bilirubin >= 6.0:
		return 3
	case bilirubin >= 2.0:
		return 2
	case bilirubin >= 1.2:
		return 1
	default:
		return 0
	}
}

func cardiovascularScore(mapMMHg float64, vasopressor string) int {
	switch vasopressor {
	case "high":
		return 4
	case "moderate":
		return 3
	case "low":
		return 2
	}
	if mapMMHg < 70 {
		return 1
	}
	return 0
}

func cnsScore(gcs int) int {
	switch {
	case gcs < 6:
		return 4
	case gcs <= 9:
		return 3
	case gcs <= 12:
		return 2
	case gcs <= 14:
		return 1
	default:
		return 0
	}
}

func renalScore(creatinine float64) int {
	switch {
	case creatinine >= 5.0:
		return 4
	case creatinine >= 3.5:
		return 3
	case creatinine >= 2.0:
		return 2
	case creatinine >= 1.2:
		return 1
	default:
		return 0
	}
}

func sofaInterpretation(total int) string {
	switch {
	case total >= 15:
		return fmt.Sprintf("SOFA score %d: very high risk of mortality (>80%%). Immediate intensive care review indicated.", total)
	case total >= 12:
		return fmt.Sprintf("SOFA score %d: high risk of mortality (40-60%%). Intensive care involvement recommended.", total)
	case total >= 7:
		return fmt.Sprintf("SOFA score %d: moderate risk of mortality (15-25%%). Close monitoring and reassessment advised.", total)
	case total >= 2:
		return fmt.Sprintf("SOFA score %d: elevated organ dysfunction. Reassess within 24 hours.", total)
	default:
		return fmt.Sprintf("SOFA score %d: minimal organ dysfunction.", total)
	}
}

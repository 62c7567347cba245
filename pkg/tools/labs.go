package tools

import (
	"context"
	"fmt"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/schema"
)

const labDisclaimer = "Reference ranges are adult general ranges; lab-specific ranges on the report take precedence."

// referenceRange holds normal and critical bounds for one analyte.
type referenceRange struct {
	unit                     string
	low, high                float64
	criticalLow, criticalHigh float64
}

// labRanges is the analyte reference table. Data, not code.
var labRanges = map[string]referenceRange{
	"sodium":     {unit: "mmol/L", low: 135, high: 145, criticalLow: 120, criticalHigh: 160},
	"potassium":  {unit: "mmol/L", low: 3.5, high: 5.0, criticalLow: 2.5, criticalHigh: 6.5},
	"creatinine": {unit: "mg/dL", low: 0.6, high: 1.2, criticalLow: 0, criticalHigh: 7.0},
	"glucose":    {unit: "mg/dL", low: 70, high: 140, criticalLow: 40, criticalHigh: 500},
	"wbc":        {unit: "10^3/µL", low: 4.0, high: 11.0, criticalLow: 1.0, criticalHigh: 50.0},
	"hemoglobin": {unit: "g/dL", low: 12.0, high: 17.5, criticalLow: 6.5, criticalHigh: 22.0},
	"platelets":  {unit: "10^3/µL", low: 150, high: 400, criticalLow: 20, criticalHigh: 1000},
}

// labOrder fixes a deterministic reporting order for flags.
var labOrder = []string{"sodium", "potassium", "creatinine", "glucose", "wbc", "hemoglobin", "platelets"}

// LabInterpreter flags reported lab values against reference ranges.
type LabInterpreter struct {
	fields schema.Fields
}

// NewLabInterpreter creates the lab panel interpreter.
func NewLabInterpreter() *LabInterpreter {
	fields := make(schema.Fields, 0, len(labOrder))
	for _, analyte := range labOrder {
		r := labRanges[analyte]
		fields = append(fields, schema.Field{
			Name:        analyte,
			Type:        schema.FloatMin(0),
			Description: fmt.Sprintf("%s in %s", analyte, r.unit),
		})
	}
	return &LabInterpreter{fields: fields}
}

func (t *LabInterpreter) Metadata() domain.ToolMetadata {
	return domain.ToolMetadata{
		ID:          "lab_interpreter",
		Name:        "Lab Panel Interpreter",
		Category:    "lab",
		Description: "Flags reported lab values against adult reference ranges, highlighting critical results",
	}
}

func (t *LabInterpreter) Schema() schema.Fields { return t.fields }

// Validate requires at least one known analyte on top of the schema checks.
func (t *LabInterpreter) Validate(params map[string]any) domain.ValidationResult {
	res := fromSchema(t.fields.Validate(params))

	reported := 0
	for _, analyte := range labOrder {
		if _, ok := params[analyte]; ok {
			reported++
		}
	}
	if reported == 0 {
		res.Valid = false
		res.Errors = append(res.Errors, "at least one lab value is required")
	}
	return res
}

type labInput struct {
	Sodium     *float64 `param:"sodium"`
	Potassium  *float64 `param:"potassium"`
	Creatinine *float64 `param:"creatinine"`
	Glucose    *float64 `param:"glucose"`
	WBC        *float64 `param:"wbc"`
	Hemoglobin *float64 `param:"hemoglobin"`
	Platelets  *float64 `param:"platelets"`
}

func (in *labInput) get(analyte string) *float64 {
	switch analyte {
	case "sodium":
		return in.Sodium
	case "potassium":
		return in.Potassium
	case "creatinine":
		return in.Creatinine
	case "glucose":
		return in.Glucose
	case "wbc":
		return in.WBC
	case "hemoglobin":
		return in.Hemoglobin
	case "platelets":
		return in.Platelets
	default:
		return nil
	}
}

func (t *LabInterpreter) Execute(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
	if err := t.fields.Validate(params).Err(); err != nil {
		return nil, err
	}
	var in labInput
	if err := schema.Decode(params, &in); err != nil {
		return nil, err
	}

	var flags []map[string]any
	var warnings []string
	criticals := 0

	for _, analyte := range labOrder {
		reported := in.get(analyte)
		if reported == nil {
			continue
		}
		value := *reported
		r := labRanges[analyte]
		flag := classifyLab(value, r)
		if flag == "normal" {
			continue
		}
		flags = append(flags, map[string]any{
			"analyte":   analyte,
			"value":     value,
			"unit":      r.unit,
			"flag":      flag,
			"reference": fmt.Sprintf("%g-%g %s", r.low, r.high, r.unit),
		})
		if flag == "critical_low" || flag == "critical_high" {
			criticals++
			warnings = append(warnings, fmt.Sprintf("critical %s: %g %s", analyte, value, r.unit))
		}
	}

	interpretation := "All reported values are within reference ranges."
	switch {
	case criticals > 0:
		interpretation = fmt.Sprintf("%d critical value(s) reported. Immediate clinical correlation required.", criticals)
	case len(flags) > 0:
		interpretation = fmt.Sprintf("%d value(s) outside reference ranges.", len(flags))
	}

	return &domain.ToolOutput{
		Data: map[string]any{
			"flags":          flags,
			"flag_count":     len(flags),
			"critical_count": criticals,
		},
		Interpretation: interpretation,
		Disclaimer:     labDisclaimer,
		Warnings:       warnings,
	}, nil
}

func classifyLab(value float64, r referenceRange) string {
	switch {
	case value <= r.criticalLow:
		return "critical_low"
	case value >= r.criticalHigh:
		return "critical_high"
	case value < r.low:
		return "low"
	case value > r.high:
		return "high"
	default:
		return "normal"
	}
}

package tools

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/schema"
)

const dosageDisclaimer = "Weight-based dosing for standard indications only. Adjust for renal/hepatic impairment and verify against local formulary."

// dosingRule is one medication's weight-based regimen. Doses are exact
// decimal milligrams so rounding happens once, at the end.
type dosingRule struct {
	mgPerKgDose  decimal.Decimal
	dosesPerDay  int
	maxSingleMg  decimal.Decimal
	maxDailyMg   decimal.Decimal
	route        string
}

// dosingTable maps medication names onto their regimens. Data, not code.
var dosingTable = map[string]dosingRule{
	"amoxicillin": {
		mgPerKgDose: decimal.NewFromInt(15),
		dosesPerDay: 3,
		maxSingleMg: decimal.NewFromInt(1000),
		maxDailyMg:  decimal.NewFromInt(3000),
		route:       "oral",
	},
	"paracetamol": {
		mgPerKgDose: decimal.NewFromInt(15),
		dosesPerDay: 4,
		maxSingleMg: decimal.NewFromInt(1000),
		maxDailyMg:  decimal.NewFromInt(4000),
		route:       "oral",
	},
	"ibuprofen": {
		mgPerKgDose: decimal.NewFromInt(10),
		dosesPerDay: 3,
		maxSingleMg: decimal.NewFromInt(400),
		maxDailyMg:  decimal.NewFromInt(1200),
		route:       "oral",
	},
	"ceftriaxone": {
		mgPerKgDose: decimal.NewFromInt(50),
		dosesPerDay: 1,
		maxSingleMg: decimal.NewFromInt(2000),
		maxDailyMg:  decimal.NewFromInt(2000),
		route:       "IV",
	},
}

// DosageCalculator computes weight-based doses with per-dose and daily caps.
type DosageCalculator struct {
	fields schema.Fields
}

// NewDosageCalculator creates the dosage calculator.
func NewDosageCalculator() *DosageCalculator {
	medications := make([]string, 0, len(dosingTable))
	for _, m := range []string{"amoxicillin", "paracetamol", "ibuprofen", "ceftriaxone"} {
		medications = append(medications, m)
	}
	return &DosageCalculator{
		fields: schema.Fields{
			{Name: "medication", Type: schema.Enum(medications...), Required: true, Description: "Medication to dose"},
			{Name: "weight_kg", Type: schema.FloatRange(0.5, 300), Required: true, Description: "Patient weight in kilograms"},
		},
	}
}

func (t *DosageCalculator) Metadata() domain.ToolMetadata {
	return domain.ToolMetadata{
		ID:          "dosage_calculator",
		Name:        "Weight-Based Dosage Calculator",
		Category:    "dosage",
		Description: "Computes weight-based medication doses with per-dose and daily maximum caps",
	}
}

func (t *DosageCalculator) Schema() schema.Fields { return t.fields }

func (t *DosageCalculator) Validate(params map[string]any) domain.ValidationResult {
	return fromSchema(t.fields.Validate(params))
}

type dosageInput struct {
	Medication string  `param:"medication"`
	WeightKg   float64 `param:"weight_kg"`
}

func (t *DosageCalculator) Execute(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
	if err := t.fields.Validate(params).Err(); err != nil {
		return nil, err
	}
	var in dosageInput
	if err := schema.Decode(params, &in); err != nil {
		return nil, err
	}

	rule, ok := dosingTable[in.Medication]
	if !ok {
		return nil, fmt.Errorf("no dosing rule for %q", in.Medication)
	}

	weight := decimal.NewFromFloat(in.WeightKg)
	dose := rule.mgPerKgDose.Mul(weight)

	var warnings []string
	capped := false
	if dose.GreaterThan(rule.maxSingleMg) {
		dose = rule.maxSingleMg
		capped = true
		warnings = append(warnings, fmt.Sprintf("single dose capped at %s mg", rule.maxSingleMg))
	}

	daily := dose.Mul(decimal.NewFromInt(int64(rule.dosesPerDay)))
	if daily.GreaterThan(rule.maxDailyMg) {
		daily = rule.maxDailyMg
		capped = true
		warnings = append(warnings, fmt.Sprintf("daily total capped at %s mg", rule.maxDailyMg))
	}

	dose = dose.Round(1)
	daily = daily.Round(1)

	return &domain.ToolOutput{
		Data: map[string]any{
			"medication":    in.Medication,
			"route":         rule.route,
			"dose_mg":       dose.String(),
			"doses_per_day": rule.dosesPerDay,
			"daily_mg":      daily.String(),
			"capped":        capped,
		},
		Interpretation: fmt.Sprintf("%s %s mg %s, %d time(s) daily (%s mg/day).", in.Medication, dose, rule.route, rule.dosesPerDay, daily),
		Disclaimer:     dosageDisclaimer,
		Warnings:       warnings,
	}, nil
}

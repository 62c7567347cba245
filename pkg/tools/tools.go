package tools

import (
	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/registry"
	"github.com/caregate/caregate/pkg/schema"
)

// Defaults returns the standard clinical tool set in registration order.
func Defaults() []registry.ClinicalTool {
	return []registry.ClinicalTool{
		NewLabInterpreter(),
		NewInteractionChecker(),
		NewDosageCalculator(),
		NewSOFACalculator(),
	}
}

// fromSchema converts a schema validation result into the domain shape.
func fromSchema(res schema.Result) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:    res.Valid,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}
}

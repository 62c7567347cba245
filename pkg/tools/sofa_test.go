package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caregate/caregate/pkg/tools"
)

func TestSOFACalculator_WorstCase(t *testing.T) {
	calc := tools.NewSOFACalculator()

	params := map[string]any{
		"pao2_fio2_ratio":        80.0,
		"respiratory_support":    true,
		"platelets":              10.0,
		"bilirubin":              13.0,
		"mean_arterial_pressure": 40.0,
		"vasopressor":            "high",
		"glasgow_coma_scale":     3,
		"creatinine":             6.0,
	}

	res := calc.Validate(params)
	require.True(t, res.Valid, "errors: %v", res.Errors)

	out, err := calc.Execute(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 24, out.Data["total_score"])
	components, ok := out.Data["components"].(map[string]int)
	require.True(t, ok)
	for system, score := range components {
		assert.Equal(t, 4, score, "system %s", system)
	}
	assert.Contains(t, out.Interpretation, "very high risk")
	assert.NotEmpty(t, out.Disclaimer)
}

func TestSOFACalculator_HealthyPatient(t *testing.T) {
	calc := tools.NewSOFACalculator()

	out, err := calc.Execute(context.Background(), map[string]any{
		"pao2_fio2_ratio":        450.0,
		"platelets":              250.0,
		"bilirubin":              0.8,
		"mean_arterial_pressure": 85.0,
		"vasopressor":            "none",
		"glasgow_coma_scale":     15,
		"creatinine":             0.9,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Data["total_score"])
	assert.Contains(t, out.Interpretation, "minimal organ dysfunction")
}

func TestSOFACalculator_MidRange(t *testing.T) {
	calc := tools.NewSOFACalculator()

	out, err := calc.Execute(context.Background(), map[string]any{
		"pao2_fio2_ratio":        250.0, // 2
		"platelets":              90.0,  // 2
		"bilirubin":              2.5,   // 2
		"mean_arterial_pressure": 65.0,  // 1
		"glasgow_coma_scale":     13,    // 1
		"creatinine":             1.5,   // 1
	})
	require.NoError(t, err)

	assert.Equal(t, 9, out.Data["total_score"])
	assert.Contains(t, out.Interpretation, "moderate risk")
}

func TestSOFACalculator_RespirationCappedWithoutSupport(t *testing.T) {
	calc := tools.NewSOFACalculator()

	out, err := calc.Execute(context.Background(), map[string]any{
		"pao2_fio2_ratio":        90.0, // would be 4, but no support reported
		"respiratory_support":    false,
		"platelets":              250.0,
		"bilirubin":              0.5,
		"mean_arterial_pressure": 80.0,
		"glasgow_coma_scale":     15,
		"creatinine":             0.9,
	})
	require.NoError(t, err)

	components := out.Data["components"].(map[string]int)
	assert.Equal(t, 2, components["respiration"])
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "respiration score capped")
}

func TestSOFACalculator_Validate(t *testing.T) {
	calc := tools.NewSOFACalculator()

	res := calc.Validate(map[string]any{"pao2_fio2_ratio": 300.0})
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)

	res = calc.Validate(map[string]any{
		"pao2_fio2_ratio":        300.0,
		"platelets":              100.0,
		"bilirubin":              1.0,
		"mean_arterial_pressure": 75.0,
		"glasgow_coma_scale":     20, // out of range
		"creatinine":             1.0,
	})
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "glasgow_coma_scale")
}

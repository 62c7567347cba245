package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caregate/caregate/pkg/tools"
)

func TestDosageCalculator_Pediatric(t *testing.T) {
	calc := tools.NewDosageCalculator()

	out, err := calc.Execute(context.Background(), map[string]any{
		"medication": "amoxicillin",
		"weight_kg":  20.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "300", out.Data["dose_mg"])
	assert.Equal(t, 3, out.Data["doses_per_day"])
	assert.Equal(t, "900", out.Data["daily_mg"])
	assert.Equal(t, false, out.Data["capped"])
	assert.Empty(t, out.Warnings)
}

func TestDosageCalculator_SingleDoseCap(t *testing.T) {
	calc := tools.NewDosageCalculator()

	// 90 kg * 15 mg/kg = 1350 mg, capped at 1000 mg per dose.
	out, err := calc.Execute(context.Background(), map[string]any{
		"medication": "paracetamol",
		"weight_kg":  90.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "1000", out.Data["dose_mg"])
	assert.Equal(t, "4000", out.Data["daily_mg"])
	assert.Equal(t, true, out.Data["capped"])
	assert.NotEmpty(t, out.Warnings)
}

func TestDosageCalculator_DailyCap(t *testing.T) {
	calc := tools.NewDosageCalculator()

	// 45 kg * 10 mg/kg = 450 > 400 single cap; 400*3 = 1200 = daily cap.
	out, err := calc.Execute(context.Background(), map[string]any{
		"medication": "ibuprofen",
		"weight_kg":  45.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "400", out.Data["dose_mg"])
	assert.Equal(t, "1200", out.Data["daily_mg"])
	assert.Equal(t, true, out.Data["capped"])
}

func TestDosageCalculator_FractionalWeightRounds(t *testing.T) {
	calc := tools.NewDosageCalculator()

	// 7.3 kg * 15 mg/kg = 109.5 mg exactly.
	out, err := calc.Execute(context.Background(), map[string]any{
		"medication": "paracetamol",
		"weight_kg":  7.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "109.5", out.Data["dose_mg"])
	assert.Equal(t, "438", out.Data["daily_mg"])
}

func TestDosageCalculator_Validate(t *testing.T) {
	calc := tools.NewDosageCalculator()

	res := calc.Validate(map[string]any{"medication": "aspirin", "weight_kg": 70.0})
	assert.False(t, res.Valid, "unknown medication must fail validation")

	res = calc.Validate(map[string]any{"medication": "ceftriaxone", "weight_kg": 500.0})
	assert.False(t, res.Valid)

	res = calc.Validate(map[string]any{"medication": "ceftriaxone", "weight_kg": 70.0})
	assert.True(t, res.Valid)
}

func TestDosageCalculator_ExecuteRejectsInvalidParams(t *testing.T) {
	calc := tools.NewDosageCalculator()

	// Direct execution, outside the engine's validation gate, still refuses
	// parameters the schema rejects.
	out, err := calc.Execute(context.Background(), map[string]any{"medication": "aspirin"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "weight_kg")
}

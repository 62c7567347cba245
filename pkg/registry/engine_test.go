package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caregate/caregate/pkg/adapters/audit"
	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/registry"
	"github.com/caregate/caregate/pkg/schema"
	"github.com/caregate/caregate/pkg/tools"
)

// failingSink rejects every record.
type failingSink struct{}

func (failingSink) Record(ctx context.Context, rec domain.AuditRecord) error {
	return errors.New("disk full")
}

func newEngine(t *testing.T, sink *audit.MemorySink) *registry.Engine {
	t.Helper()
	r := registry.NewRegistry()
	r.MustRegister(tools.Defaults()...)

	opts := []registry.EngineOption{}
	if sink != nil {
		opts = append(opts, registry.WithAuditSink(sink))
	}
	return registry.NewEngine(r, opts...)
}

func TestEngine_Execute_Success(t *testing.T) {
	sink := audit.NewMemorySink()
	e := newEngine(t, sink)

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{
		ToolID: "drug_interaction_checker",
		Parameters: map[string]any{
			"medications": []any{"warfarin", "aspirin"},
		},
		UserID:         "u-1",
		ConversationID: "c-1",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Data["interaction_count"])
	assert.GreaterOrEqual(t, res.ExecutionTimeMs, int64(0))
	assert.False(t, res.Timestamp.IsZero())

	require.Equal(t, 1, sink.Len())
	recs, err := sink.Recent(context.Background(), 1)
	require.NoError(t, err)
	rec := recs[0]
	assert.Equal(t, "tool_execute", rec.Action)
	assert.Equal(t, "drug_interaction_checker", rec.Resource)
	assert.Equal(t, "u-1", rec.UserID)
	assert.Equal(t, "success", rec.Metadata["status"])
	assert.Equal(t, 1, rec.Metadata["parameter_count"])
	assert.False(t, rec.PHIAccessed)
	assert.NotEmpty(t, rec.ID)
}

func TestEngine_Execute_PHIFlaggedCategories(t *testing.T) {
	sink := audit.NewMemorySink()
	e := newEngine(t, sink)

	_, err := e.Execute(context.Background(), domain.ExecuteToolRequest{
		ToolID:     "lab_interpreter",
		Parameters: map[string]any{"sodium": 140.0},
	})
	require.NoError(t, err)

	recs, err := sink.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, recs[0].PHIAccessed)
	// Audit metadata never carries raw values for PHI-bearing tools.
	assert.NotContains(t, recs[0].Metadata, "parameters")
	assert.NotContains(t, recs[0].Metadata, "sodium")
}

func TestEngine_Execute_UnknownTool(t *testing.T) {
	e := newEngine(t, nil)

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{
		ToolID:     "nonexistent_tool",
		Parameters: map[string]any{},
	})

	assert.ErrorIs(t, err, domain.ErrToolNotFound)
	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "nonexistent_tool")
	assert.GreaterOrEqual(t, res.ExecutionTimeMs, int64(0))
}

func TestEngine_Execute_ValidationFailure(t *testing.T) {
	sink := audit.NewMemorySink()
	e := newEngine(t, sink)

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{
		ToolID:     "dosage_calculator",
		Parameters: map[string]any{"medication": "amoxicillin", "weight_kg": "heavy"},
	})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)

	recs, err := sink.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "validation_failed", recs[0].Metadata["status"])
}

func TestEngine_Execute_ValidationGateSkipsToolLogic(t *testing.T) {
	executed := 0
	r := registry.NewRegistry()
	r.MustRegister(&stubTool{
		meta:   domain.ToolMetadata{ID: "gated"},
		fields: schema.Fields{{Name: "dose", Type: schema.Int(), Required: true}},
		execute: func(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
			executed++
			return &domain.ToolOutput{Data: map[string]any{"ok": true}}, nil
		},
	})
	e := registry.NewEngine(r)

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{
		ToolID:     "gated",
		Parameters: map[string]any{"dose": "ten"},
	})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, executed)
}

func TestEngine_Execute_MalformedParamsNeverPanic(t *testing.T) {
	e := newEngine(t, nil)

	cases := []map[string]any{
		nil,
		{},
		{"unexpected": "value"},
		{"medications": 42},
		{"medications": []any{1, 2}},
		{"pao2_fio2_ratio": map[string]any{"nested": true}},
	}

	for _, params := range cases {
		for _, id := range []string{"drug_interaction_checker", "sofa_calculator", "lab_interpreter", "dosage_calculator"} {
			res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{ToolID: id, Parameters: params})
			require.NoError(t, err)
			assert.False(t, res.Success)
		}
	}
}

func TestEngine_Execute_ToolPanicBecomesFailure(t *testing.T) {
	r := registry.NewRegistry()
	r.MustRegister(&stubTool{
		meta: domain.ToolMetadata{ID: "panicky", Category: "lab"},
		execute: func(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
			panic("boom")
		},
	})
	e := registry.NewEngine(r)

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{ToolID: "panicky"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "panic")
}

func TestEngine_Execute_NilOutputIsFailure(t *testing.T) {
	r := registry.NewRegistry()
	r.MustRegister(&stubTool{
		meta: domain.ToolMetadata{ID: "empty"},
		execute: func(ctx context.Context, params map[string]any) (*domain.ToolOutput, error) {
			return nil, nil
		},
	})
	e := registry.NewEngine(r)

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{ToolID: "empty"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestEngine_Execute_AuditFailureFailsClosed(t *testing.T) {
	r := registry.NewRegistry()
	r.MustRegister(tools.NewLabInterpreter())
	e := registry.NewEngine(r, registry.WithAuditSink(failingSink{}))

	res, err := e.Execute(context.Background(), domain.ExecuteToolRequest{
		ToolID:     "lab_interpreter",
		Parameters: map[string]any{"sodium": 140.0},
	})

	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], domain.ErrAuditUnavailable.Error())
}

func TestEngine_ValidateExecution(t *testing.T) {
	e := newEngine(t, nil)

	res := e.ValidateExecution(domain.ExecuteToolRequest{
		ToolID:     "dosage_calculator",
		Parameters: map[string]any{"medication": "ibuprofen", "weight_kg": 30.0},
	})
	assert.True(t, res.Valid)

	res = e.ValidateExecution(domain.ExecuteToolRequest{ToolID: "missing"})
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestEngine_ExecuteInChat_Success(t *testing.T) {
	e := newEngine(t, nil)

	chat := e.ExecuteInChat(context.Background(), "sofa_calculator", map[string]any{
		"pao2_fio2_ratio":        80.0,
		"respiratory_support":    true,
		"platelets":              10.0,
		"bilirubin":              13.0,
		"mean_arterial_pressure": 40.0,
		"vasopressor":            "high",
		"glasgow_coma_scale":     3,
		"creatinine":             6.0,
	}, "u-1", "c-1")

	assert.Equal(t, "sofa_calculator", chat.ToolID)
	assert.Equal(t, "SOFA Score Calculator", chat.ToolName)
	assert.True(t, chat.Result.Success)
	assert.Contains(t, chat.FormattedForChat, "Total score: 24")
	assert.Contains(t, chat.FormattedForChat, "respiration")
}

func TestEngine_ExecuteInChat_UnknownToolDoesNotError(t *testing.T) {
	e := newEngine(t, nil)

	chat := e.ExecuteInChat(context.Background(), "nope", map[string]any{}, "", "")

	assert.False(t, chat.Result.Success)
	assert.Contains(t, chat.FormattedForChat, "failed")
}

func TestFormatForChat_DefaultFallback(t *testing.T) {
	meta := domain.ToolMetadata{ID: "x", Name: "Custom Tool", Category: "unmapped_category"}
	res := domain.ToolExecutionResult{
		Success:        true,
		Interpretation: "All good.",
		Disclaimer:     "Check locally.",
		Warnings:       []string{"watch this"},
	}

	out := registry.FormatForChat(meta, res)

	assert.Contains(t, out, "## Custom Tool")
	assert.Contains(t, out, "All good.")
	assert.Contains(t, out, "watch this")
	assert.Contains(t, out, "Check locally.")
}

func TestFormatForChat_FailureRendersErrors(t *testing.T) {
	out := registry.FormatForChat(
		domain.ToolMetadata{ID: "dosage_calculator", Category: "dosage"},
		domain.ToolExecutionResult{Success: false, Errors: []string{"weight_kg: required"}},
	)

	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "weight_kg: required")
}

package caregate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caregate/caregate"
	"github.com/caregate/caregate/pkg/adapters/audit"
	"github.com/caregate/caregate/pkg/domain"
)

type cannedGen struct {
	text       string
	confidence float64
}

func (g cannedGen) Generate(ctx context.Context, req domain.LocalGenerationRequest, chunks []domain.RetrievedChunk) (*domain.LocalGenerationResponse, error) {
	return &domain.LocalGenerationResponse{
		ResponseText: g.text,
		Confidence:   g.confidence,
		IsGrounded:   true,
	}, nil
}

type cannedRetriever struct {
	chunks []domain.RetrievedChunk
}

func (r cannedRetriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	return r.chunks, nil
}

const safeAnswer = "Resting heart rate in healthy adults may range from 60 to 100 beats per minute; consult your healthcare provider about persistent deviations."

func TestNew_DefaultToolSet(t *testing.T) {
	plane, err := caregate.New()
	require.NoError(t, err)

	list := plane.ListTools()
	require.Len(t, list, 4)

	stats := plane.ToolStatistics()
	assert.Equal(t, 1, stats["severity_score"])
	assert.Equal(t, 1, stats["lab"])
}

func TestRoute_EscalationShortCircuitsEverything(t *testing.T) {
	sink := audit.NewMemorySink()
	plane, err := caregate.New(
		caregate.WithAuditSink(sink),
		caregate.WithGenerator(cannedGen{text: safeAnswer, confidence: 0.9}),
	)
	require.NoError(t, err)

	// Even with a valid tool request attached, an emergency classification
	// routes to escalation.
	out, err := plane.Route(context.Background(), domain.Classification{
		Intent:            "tool",
		IsEmergency:       true,
		EmergencySeverity: domain.SeverityCritical,
	}, caregate.Query{
		Text:           "crushing chest pain",
		UserID:         "u-1",
		ConversationID: "conv-1",
		Category:       "cardiac",
		ToolID:         "sofa_calculator",
	})
	require.NoError(t, err)

	assert.Equal(t, "escalation", out.Kind)
	require.NotNil(t, out.Escalation)
	assert.True(t, out.Escalation.RequiresImmediate911)
	assert.Nil(t, out.Tool)
	assert.Nil(t, out.Generation)

	recs, err := sink.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "emergency_escalation", recs[0].Action)
}

func TestRoute_ToolIntent(t *testing.T) {
	plane, err := caregate.New()
	require.NoError(t, err)

	out, err := plane.Route(context.Background(), domain.Classification{Intent: "tool"}, caregate.Query{
		ToolID: "drug_interaction_checker",
		Parameters: map[string]any{
			"medications": []any{"warfarin", "aspirin"},
		},
		UserID: "u-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "tool", out.Kind)
	require.NotNil(t, out.Tool)
	assert.True(t, out.Tool.Result.Success)
	assert.Contains(t, out.Tool.FormattedForChat, "warfarin")
}

func TestRoute_RetrievalIntent(t *testing.T) {
	plane, err := caregate.New(caregate.WithRetriever(cannedRetriever{
		chunks: []domain.RetrievedChunk{{Text: "formulary entry", Source: "bnf", Confidence: 0.8}},
	}))
	require.NoError(t, err)

	out, err := plane.Route(context.Background(), domain.Classification{Intent: "retrieval"}, caregate.Query{
		Text: "paracetamol dosing reference",
	})
	require.NoError(t, err)

	assert.Equal(t, "retrieval", out.Kind)
	require.Len(t, out.Chunks, 1)
	assert.Equal(t, "bnf", out.Chunks[0].Source)
}

func TestRoute_RetrievalWithoutRetrieverErrors(t *testing.T) {
	plane, err := caregate.New()
	require.NoError(t, err)

	_, err = plane.Route(context.Background(), domain.Classification{Intent: "retrieval"}, caregate.Query{Text: "q"})
	assert.Error(t, err)
}

func TestRoute_DefaultIntentRunsSandwich(t *testing.T) {
	plane, err := caregate.New(
		caregate.WithGenerator(cannedGen{text: safeAnswer, confidence: 0.9}),
	)
	require.NoError(t, err)

	out, err := plane.Route(context.Background(), domain.Classification{Intent: "general_information"}, caregate.Query{
		Text: "what is a normal resting heart rate",
	})
	require.NoError(t, err)

	assert.Equal(t, "generation", out.Kind)
	require.NotNil(t, out.Generation)
	assert.Equal(t, domain.DecisionServeLocal, out.Generation.FinalDecision)
	assert.Equal(t, safeAnswer, out.Generation.ResponseText)
}

func TestRoute_SandwichBlocksEmergencyPhrasing(t *testing.T) {
	// Not classified as an emergency, but the pre-check still catches the
	// query text and keeps it away from the local model.
	plane, err := caregate.New(
		caregate.WithGenerator(cannedGen{text: safeAnswer, confidence: 0.9}),
	)
	require.NoError(t, err)

	out, err := plane.Route(context.Background(), domain.Classification{Intent: "general_information"}, caregate.Query{
		Text: "my father is unconscious, what do I do",
	})
	require.NoError(t, err)

	require.NotNil(t, out.Generation)
	assert.Equal(t, domain.DecisionEscalateToAPI, out.Generation.FinalDecision)
	assert.False(t, out.Generation.ProceededToGeneration)
}

func TestNew_WithoutDefaultTools(t *testing.T) {
	plane, err := caregate.New(caregate.WithoutDefaultTools())
	require.NoError(t, err)
	assert.Empty(t, plane.ListTools())
}

func TestExecuteTool_Delegates(t *testing.T) {
	plane, err := caregate.New()
	require.NoError(t, err)

	res, err := plane.ExecuteTool(context.Background(), domain.ExecuteToolRequest{
		ToolID:     "lab_interpreter",
		Parameters: map[string]any{"potassium": 7.2},
		UserID:     "u-1",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Data["critical_count"])
}

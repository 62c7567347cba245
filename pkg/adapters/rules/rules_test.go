package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caregate/caregate/pkg/adapters/rules"
	"github.com/caregate/caregate/pkg/domain"
)

func TestPreChecker_BlocksEmergencyTerms(t *testing.T) {
	p := rules.NewPreChecker()

	res, err := p.Check(context.Background(), domain.LocalGenerationRequest{
		Query: "I have crushing CHEST PAIN right now, what should I do?",
	})
	require.NoError(t, err)

	assert.False(t, res.IsSafeForLocalGeneration)
	assert.Equal(t, domain.RecommendEscalate, res.RecommendedAction)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
	assert.Contains(t, res.RiskFactors, "chest pain")
	assert.Equal(t, "rule_based", res.Method)
}

func TestPreChecker_BlocksHighRiskIntent(t *testing.T) {
	p := rules.NewPreChecker()

	for _, intent := range []string{"dosing_decision", "diagnosis", "emergency"} {
		res, err := p.Check(context.Background(), domain.LocalGenerationRequest{
			Query:  "general question",
			Intent: intent,
		})
		require.NoError(t, err)
		assert.False(t, res.IsSafeForLocalGeneration, "intent %s", intent)
		assert.Equal(t, domain.RecommendEscalate, res.RecommendedAction)
	}
}

func TestPreChecker_BlocksHighRiskLevel(t *testing.T) {
	p := rules.NewPreChecker()

	res, err := p.Check(context.Background(), domain.LocalGenerationRequest{
		Query:     "what are common side effects of metformin",
		RiskLevel: "HIGH",
	})
	require.NoError(t, err)
	assert.False(t, res.IsSafeForLocalGeneration)
}

func TestPreChecker_ReviewTermsFlagForHuman(t *testing.T) {
	p := rules.NewPreChecker()

	res, err := p.Check(context.Background(), domain.LocalGenerationRequest{
		Query: "is off-label use of ketamine appropriate here",
	})
	require.NoError(t, err)

	assert.False(t, res.IsSafeForLocalGeneration)
	assert.Equal(t, domain.RecommendFlagForReview, res.RecommendedAction)
}

func TestPreChecker_AllowsBenignQuery(t *testing.T) {
	p := rules.NewPreChecker()

	res, err := p.Check(context.Background(), domain.LocalGenerationRequest{
		Query:  "what is a normal resting heart rate for adults",
		Intent: "general_information",
	})
	require.NoError(t, err)

	assert.True(t, res.IsSafeForLocalGeneration)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	assert.False(t, res.PredictedAt.IsZero())
}

const goodDraft = "A normal resting heart rate for adults generally ranges from 60 to 100 beats per minute. Individual values can vary with fitness and medication. Consult your healthcare provider if your readings are consistently outside this range."

func TestPostChecker_ApprovesGoodDraft(t *testing.T) {
	p := rules.NewPostChecker()

	res, err := p.Verify(context.Background(), domain.LocalGenerationRequest{Query: "q"},
		domain.LocalGenerationResponse{ResponseText: goodDraft, Confidence: 0.9})
	require.NoError(t, err)

	assert.True(t, res.IsVerified)
	assert.Equal(t, domain.RecommendApprove, res.RecommendedAction)
	assert.True(t, res.Safety.NoContraindications)
	assert.True(t, res.Safety.AppropriateUncertainty)
	assert.True(t, res.Safety.NoPHIExposure)
	assert.GreaterOrEqual(t, res.QualityScore, 0.6)
	assert.False(t, res.CheckedAt.IsZero())
}

func TestPostChecker_CatchesDirectiveAdvice(t *testing.T) {
	p := rules.NewPostChecker()

	res, err := p.Verify(context.Background(), domain.LocalGenerationRequest{},
		domain.LocalGenerationResponse{
			ResponseText: "You should stop taking your medication immediately and there is no need to see a doctor about this situation at all.",
		})
	require.NoError(t, err)

	assert.False(t, res.IsVerified)
	assert.False(t, res.Safety.NoContraindications)
	assert.Equal(t, domain.RecommendEscalate, res.RecommendedAction)
	assert.NotEmpty(t, res.Safety.Issues)
}

func TestPostChecker_CatchesPHILeakage(t *testing.T) {
	p := rules.NewPostChecker()

	drafts := []string{
		"The patient record 123-45-6789 shows a normal panel; please consult your doctor for details and follow-up as values may vary over time in practice.",
		"Per MRN: 8675309 the labs are unremarkable; please consult your doctor for details and follow-up as values may vary over time in practice.",
	}
	for _, draft := range drafts {
		res, err := p.Verify(context.Background(), domain.LocalGenerationRequest{},
			domain.LocalGenerationResponse{ResponseText: draft})
		require.NoError(t, err)
		assert.False(t, res.Safety.NoPHIExposure, "draft: %s", draft)
		assert.Equal(t, domain.RecommendEscalate, res.RecommendedAction)
	}
}

func TestPostChecker_MediumRiskNeedsEscalationGuidance(t *testing.T) {
	p := rules.NewPostChecker()

	res, err := p.Verify(context.Background(),
		domain.LocalGenerationRequest{RiskLevel: "medium"},
		domain.LocalGenerationResponse{ResponseText: goodDraft})
	require.NoError(t, err)

	assert.False(t, res.Safety.ProperEscalation)
	assert.Equal(t, domain.RecommendFlagForReview, res.RecommendedAction)

	withEscalation := goodDraft + " If you develop new symptoms, seek immediate medical attention."
	res, err = p.Verify(context.Background(),
		domain.LocalGenerationRequest{RiskLevel: "medium"},
		domain.LocalGenerationResponse{ResponseText: withEscalation})
	require.NoError(t, err)
	assert.True(t, res.Safety.ProperEscalation)
}

func TestPostChecker_ShortDraftNeedsRevision(t *testing.T) {
	p := rules.NewPostChecker()

	res, err := p.Verify(context.Background(), domain.LocalGenerationRequest{},
		domain.LocalGenerationResponse{ResponseText: "Yes."})
	require.NoError(t, err)

	assert.False(t, res.IsVerified)
	assert.Equal(t, domain.RecommendRevise, res.RecommendedAction)
	assert.Less(t, res.Quality.CoherenceScore, 0.5)
}

func TestPostChecker_MissingUncertaintyNeedsRevision(t *testing.T) {
	p := rules.NewPostChecker()

	res, err := p.Verify(context.Background(), domain.LocalGenerationRequest{},
		domain.LocalGenerationResponse{
			ResponseText: "The normal adult resting pulse sits between sixty and one hundred beats each minute according to standard physiology references everywhere.",
		})
	require.NoError(t, err)

	assert.False(t, res.Safety.AppropriateUncertainty)
	assert.Equal(t, domain.RecommendRevise, res.RecommendedAction)
}

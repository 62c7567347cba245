package sandwich

import "github.com/caregate/caregate/pkg/domain"

// stageOutcome is the orchestrator's internal view of how far a run got.
type stageOutcome struct {
	preRejected   bool
	preAction     string // pre-check's recommended action when rejected
	riskTooHigh   bool   // pre-check passed but below confidence threshold
	genFailed     bool
	postFailed    bool   // post-check errored or timed out
	postAction    string // post-check's recommended action when it ran
	lowConfidence bool   // generation confidence below escalation threshold
}

// decide applies the deterministic final decision rule, first match wins.
// It also reports which stage caused a non-local decision.
func decide(o stageOutcome, cfg OrchestratorConfig) (domain.FinalDecision, domain.FallbackStage) {
	onFailure := domain.DecisionUseFallback
	if cfg.FallbackToAPIOnAnyFailure {
		onFailure = domain.DecisionEscalateToAPI
	}

	switch {
	case o.preRejected:
		if o.preAction == domain.RecommendFlagForReview {
			return domain.DecisionFlagForHuman, domain.StagePreCheckFailed
		}
		return domain.DecisionEscalateToAPI, domain.StagePreCheckFailed

	case o.riskTooHigh:
		return domain.DecisionEscalateToAPI, domain.StageRiskTooHigh

	case o.genFailed:
		return onFailure, domain.StageGenerationFailed

	case o.postFailed:
		return onFailure, domain.StagePostCheckFailed

	case o.lowConfidence:
		return domain.DecisionEscalateToAPI, domain.StageRiskTooHigh

	case o.postAction == domain.RecommendEscalate:
		return domain.DecisionEscalateToAPI, domain.StagePostCheckFailed

	case o.postAction == domain.RecommendFlagForReview:
		return domain.DecisionFlagForHuman, domain.StagePostCheckFailed

	case o.postAction == domain.RecommendRevise:
		// A revision the orchestrator cannot apply itself means nothing
		// local is served.
		return domain.DecisionUseFallback, domain.StagePostCheckFailed

	case o.postAction == domain.RecommendApprove:
		return domain.DecisionServeLocal, ""

	default:
		// Only an explicit approval serves the draft. Anything else the
		// post-checker hands back, empty string included, counts as a
		// failed check.
		return onFailure, domain.StagePostCheckFailed
	}
}

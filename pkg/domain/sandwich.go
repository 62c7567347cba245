package domain

import "time"

// FinalDecision is the single field callers branch on after a safety
// sandwich run. It is always exactly one of the four values below.
type FinalDecision string

const (
	DecisionServeLocal    FinalDecision = "serve_local"
	DecisionEscalateToAPI FinalDecision = "escalate_to_api"
	DecisionUseFallback   FinalDecision = "use_fallback"
	DecisionFlagForHuman  FinalDecision = "flag_for_human"
)

// Post-check recommended actions.
const (
	RecommendApprove       = "approve"
	RecommendRevise        = "revise"
	RecommendEscalate      = "escalate"
	RecommendFlagForReview = "flag_for_review"
)

// FallbackStage tags which stage caused a non-local decision.
type FallbackStage string

const (
	StagePreCheckFailed   FallbackStage = "pre_check_failed"
	StageGenerationFailed FallbackStage = "generation_failed"
	StagePostCheckFailed  FallbackStage = "post_check_failed"
	StageRiskTooHigh      FallbackStage = "risk_too_high"
	StageShadowMode       FallbackStage = "shadow_mode"
)

// LocalGenerationRequest is the input to one safety sandwich run.
type LocalGenerationRequest struct {
	Query             string   `json:"query"`
	Intent            string   `json:"intent,omitempty"`
	RiskLevel         string   `json:"risk_level,omitempty"`
	RequiresCitations bool     `json:"requires_citations,omitempty"`
	History           []string `json:"history,omitempty"`
	UserID            string   `json:"user_id,omitempty"`
	ConversationID    string   `json:"conversation_id,omitempty"`
}

// PreCheckResult is the pre-generation safety judgment.
type PreCheckResult struct {
	IsSafeForLocalGeneration bool      `json:"is_safe_for_local_generation"`
	Confidence               float64   `json:"confidence"`
	Reason                   string    `json:"reason,omitempty"`
	RiskFactors              []string  `json:"risk_factors,omitempty"`
	RecommendedAction        string    `json:"recommended_action,omitempty"`
	Method                   string    `json:"method,omitempty"`
	PredictedAt              time.Time `json:"predicted_at"`
}

// LocalGenerationResponse is the draft produced by the local model.
type LocalGenerationResponse struct {
	ResponseText           string        `json:"response_text"`
	Confidence             float64       `json:"confidence"`
	IsGrounded             bool          `json:"is_grounded"`
	CitedSources           []string      `json:"cited_sources,omitempty"`
	IdentifiedLimitations  []string      `json:"identified_limitations,omitempty"`
	SuggestedTool          string        `json:"suggested_tool,omitempty"`
	GeneratedAt            time.Time     `json:"generated_at"`
	ModelVersion           string        `json:"model_version,omitempty"`
	ProcessingTime         time.Duration `json:"processing_time"`
}

// CheckIssue is one finding raised by a post-check dimension.
type CheckIssue struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// SafetyCheck is the safety dimension of the post-check verdict.
type SafetyCheck struct {
	NoContraindications    bool         `json:"no_contraindications"`
	AppropriateUncertainty bool         `json:"appropriate_uncertainty"`
	ProperEscalation       bool         `json:"proper_escalation"`
	NoPHIExposure          bool         `json:"no_phi_exposure"`
	Issues                 []CheckIssue `json:"issues,omitempty"`
}

// QualityCheck is the quality dimension of the post-check verdict.
type QualityCheck struct {
	CoherenceScore          float64      `json:"coherence_score"`
	TerminologyAppropriate  bool         `json:"terminology_appropriate"`
	LimitationsAcknowledged bool         `json:"limitations_acknowledged"`
	Issues                  []CheckIssue `json:"issues,omitempty"`
}

// PostCheckResult verifies a draft across the safety and quality dimensions.
type PostCheckResult struct {
	Safety            SafetyCheck  `json:"safety"`
	Quality           QualityCheck `json:"quality"`
	IsVerified        bool         `json:"is_verified"`
	QualityScore      float64      `json:"quality_score"`
	RecommendedAction string       `json:"recommended_action"`
	CheckedAt         time.Time    `json:"checked_at"`
}

// OrchestrationMetadata carries per-stage timings for one run.
type OrchestrationMetadata struct {
	PreCheckDuration   time.Duration `json:"pre_check_duration"`
	GenerationDuration time.Duration `json:"generation_duration"`
	PostCheckDuration  time.Duration `json:"post_check_duration"`
	FallbackUsed       bool          `json:"fallback_used"`
	ShadowMode         bool          `json:"shadow_mode"`
}

// EscalationEvent records a model-safety escalation (distinct from a
// clinical emergency escalation) for audit correlation.
type EscalationEvent struct {
	TraceID    string        `json:"trace_id"`
	Stage      FallbackStage `json:"stage"`
	Decision   FinalDecision `json:"decision"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// GenerationOrchestrationResult is the terminal result of one sandwich run.
// Generation is present iff the pre-check gated the request in and
// generation was attempted; PostCheck is present iff Generation is.
type GenerationOrchestrationResult struct {
	TraceID               string                   `json:"trace_id"`
	PreCheck              *PreCheckResult          `json:"pre_check,omitempty"`
	ProceededToGeneration bool                     `json:"proceeded_to_generation"`
	Generation            *LocalGenerationResponse `json:"generation,omitempty"`
	PostCheck             *PostCheckResult         `json:"post_check,omitempty"`
	FinalDecision         FinalDecision            `json:"final_decision"`
	ResponseText          string                   `json:"response_text,omitempty"`
	Escalation            *EscalationEvent         `json:"escalation,omitempty"`
	Metadata              OrchestrationMetadata    `json:"metadata"`
	TotalDuration         time.Duration            `json:"total_duration"`
	DecidedAt             time.Time                `json:"decided_at"`
}

package sandwich

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/internal/metrics"
	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

// Orchestrator sequences the pre-check, generation, and post-check stages
// around the local model and picks a final response strategy. It never
// serves an unverified answer: every stage failure, timeout, or malformed
// output resolves to a non-local decision.
type Orchestrator struct {
	cfg       Config
	pre       ports.PreChecker
	gen       ports.Generator
	post      ports.PostChecker
	retriever ports.Retriever
	audit     ports.AuditSink
	metrics   *metrics.ControlPlane
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithRetriever enables retrieval-augmented generation context.
func WithRetriever(r ports.Retriever) Option {
	return func(o *Orchestrator) { o.retriever = r }
}

// WithAuditSink sets the audit sink for escalation events.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(o *Orchestrator) { o.audit = sink }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.ControlPlane) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates a safety sandwich orchestrator. The pre-checker, generator,
// and post-checker are external collaborators; any of them may be nil, in
// which case the corresponding stage counts as failed and the run resolves
// to a fallback decision.
func New(cfg Config, pre ports.PreChecker, gen ports.Generator, post ports.PostChecker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		pre:     pre,
		gen:     gen,
		post:    post,
		metrics: metrics.New(),
		logger:  logging.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full pipeline for one request. It never returns an
// error: stage failures surface in the result's FinalDecision.
func (o *Orchestrator) Run(ctx context.Context, req domain.LocalGenerationRequest) domain.GenerationOrchestrationResult {
	started := o.now()
	result := domain.GenerationOrchestrationResult{
		TraceID: o.newID(),
		Metadata: domain.OrchestrationMetadata{
			ShadowMode: o.cfg.ShadowMode,
		},
	}

	var outcome stageOutcome

	if !o.cfg.Enabled {
		outcome.preRejected = true
		o.finish(ctx, &result, outcome, "local generation disabled", started)
		return result
	}

	// PRE_CHECK
	pre, preErr := o.runPreCheck(ctx, req, &result.Metadata)
	if preErr != nil {
		o.stageFailure("pre_check", preErr)
		outcome.preRejected = true
		o.finish(ctx, &result, outcome, "pre-check failed: "+preErr.Error(), started)
		return result
	}
	result.PreCheck = pre

	switch {
	case !pre.IsSafeForLocalGeneration:
		outcome.preRejected = true
		outcome.preAction = pre.RecommendedAction
		o.finish(ctx, &result, outcome, pre.Reason, started)
		return result
	case pre.Confidence < o.cfg.PreCheck.ConfidenceThreshold:
		outcome.riskTooHigh = true
		o.finish(ctx, &result, outcome, "pre-check confidence below threshold", started)
		return result
	}

	// GENERATION
	result.ProceededToGeneration = true
	gen, genErr := o.runGeneration(ctx, req, &result.Metadata)
	if genErr != nil {
		o.stageFailure("generation", genErr)
		outcome.genFailed = true
		o.finish(ctx, &result, outcome, "generation failed: "+genErr.Error(), started)
		return result
	}
	result.Generation = gen

	// POST_CHECK
	post, postErr := o.runPostCheck(ctx, req, *gen, &result.Metadata)
	if postErr != nil {
		o.stageFailure("post_check", postErr)
		outcome.postFailed = true
		o.finish(ctx, &result, outcome, "post-check failed: "+postErr.Error(), started)
		return result
	}
	result.PostCheck = post
	outcome.postAction = post.RecommendedAction

	if o.cfg.PostCheck.QualityThreshold > 0 && post.QualityScore < o.cfg.PostCheck.QualityThreshold && outcome.postAction == domain.RecommendApprove {
		outcome.postAction = domain.RecommendRevise
	}
	if gen.Confidence < o.cfg.Orchestrator.EscalationThreshold {
		outcome.lowConfidence = true
	}

	o.finish(ctx, &result, outcome, "", started)
	return result
}

// finish applies the decision rule, the shadow mode override, and stamps
// the result. No mutation happens after DecidedAt is set.
func (o *Orchestrator) finish(ctx context.Context, result *domain.GenerationOrchestrationResult, outcome stageOutcome, reason string, started time.Time) {
	decision, stage := decide(outcome, o.cfg.Orchestrator)

	if o.cfg.ShadowMode && decision == domain.DecisionServeLocal {
		// Shadow mode runs the full pipeline for evaluation but never lets
		// the local answer reach the caller.
		decision = domain.DecisionEscalateToAPI
		stage = domain.StageShadowMode
		if reason == "" {
			reason = "shadow mode active"
		}
	}

	result.FinalDecision = decision
	if decision == domain.DecisionServeLocal {
		result.ResponseText = result.Generation.ResponseText
	} else {
		result.Metadata.FallbackUsed = true
		result.Escalation = &domain.EscalationEvent{
			TraceID:    result.TraceID,
			Stage:      stage,
			Decision:   decision,
			Reason:     reason,
			OccurredAt: o.now(),
		}
		o.recordEscalationEvent(ctx, *result.Escalation)
	}

	result.TotalDuration = o.now().Sub(started)
	result.DecidedAt = o.now()

	if o.metrics != nil {
		o.metrics.SandwichDecisions.WithLabelValues(string(decision)).Inc()
	}
	o.logger.Info("safety sandwich decided",
		"trace_id", result.TraceID,
		"decision", string(decision),
		"proceeded_to_generation", result.ProceededToGeneration,
		"shadow_mode", o.cfg.ShadowMode)
}

func (o *Orchestrator) runPreCheck(ctx context.Context, req domain.LocalGenerationRequest, md *domain.OrchestrationMetadata) (pre *domain.PreCheckResult, err error) {
	if o.pre == nil || !o.cfg.PreCheck.Enabled {
		return nil, errStageUnavailable("pre-check")
	}

	stageCtx, cancel := o.stageContext(ctx, o.cfg.PreCheck.Timeout)
	defer cancel()

	start := o.now()
	defer func() {
		md.PreCheckDuration = o.now().Sub(start)
		o.observeStage("pre_check", md.PreCheckDuration)
		if r := recover(); r != nil {
			pre, err = nil, errStagePanic("pre-check", r)
		}
	}()

	pre, err = o.pre.Check(stageCtx, req)
	if err == nil && pre == nil {
		err = errStageUnavailable("pre-check")
	}
	return pre, err
}

func (o *Orchestrator) runGeneration(ctx context.Context, req domain.LocalGenerationRequest, md *domain.OrchestrationMetadata) (gen *domain.LocalGenerationResponse, err error) {
	if o.gen == nil {
		return nil, errStageUnavailable("generation")
	}

	stageCtx, cancel := o.stageContext(ctx, o.cfg.Generation.Timeout)
	defer cancel()

	start := o.now()
	defer func() {
		md.GenerationDuration = o.now().Sub(start)
		o.observeStage("generation", md.GenerationDuration)
		if r := recover(); r != nil {
			gen, err = nil, errStagePanic("generation", r)
		}
	}()

	var chunks []domain.RetrievedChunk
	if o.cfg.Generation.IncludeRAG && o.retriever != nil {
		var retErr error
		chunks, retErr = o.retriever.Retrieve(stageCtx, req.Query, o.cfg.Generation.TopK)
		if retErr != nil {
			// Retrieval failure is non-fatal; generation proceeds
			// ungrounded and the post-check sees IsGrounded=false.
			o.logger.Warn("retrieval failed, generating without context", "error", retErr)
			chunks = nil
		}
	}

	gen, err = o.gen.Generate(stageCtx, req, chunks)
	if err == nil && (gen == nil || gen.ResponseText == "") {
		err = errStageUnavailable("generation")
		gen = nil
	}
	return gen, err
}

func (o *Orchestrator) runPostCheck(ctx context.Context, req domain.LocalGenerationRequest, gen domain.LocalGenerationResponse, md *domain.OrchestrationMetadata) (post *domain.PostCheckResult, err error) {
	if o.post == nil || !o.cfg.PostCheck.Enabled {
		return nil, errStageUnavailable("post-check")
	}

	stageCtx, cancel := o.stageContext(ctx, o.cfg.PostCheck.Timeout)
	defer cancel()

	start := o.now()
	defer func() {
		md.PostCheckDuration = o.now().Sub(start)
		o.observeStage("post_check", md.PostCheckDuration)
		if r := recover(); r != nil {
			post, err = nil, errStagePanic("post-check", r)
		}
	}()

	post, err = o.post.Verify(stageCtx, req, gen)
	if err == nil && post == nil {
		err = errStageUnavailable("post-check")
	}
	return post, err
}

func (o *Orchestrator) stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (o *Orchestrator) observeStage(stage string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

func (o *Orchestrator) stageFailure(stage string, err error) {
	if o.metrics != nil {
		o.metrics.StageFailures.WithLabelValues(stage).Inc()
	}
	o.logger.Warn("sandwich stage failed", "stage", stage, "error", err)
}

// recordEscalationEvent mirrors the model-safety escalation into the audit
// sink for correlation with clinical records. Audit failure here is logged
// and ignored; the decision already fails closed.
func (o *Orchestrator) recordEscalationEvent(ctx context.Context, ev domain.EscalationEvent) {
	if o.audit == nil {
		return
	}
	rec := domain.AuditRecord{
		ID:       o.newID(),
		Action:   "generation_escalation",
		Resource: ev.TraceID,
		Metadata: map[string]any{
			"stage":    string(ev.Stage),
			"decision": string(ev.Decision),
			"reason":   ev.Reason,
		},
		CreatedAt: o.now(),
	}
	if err := o.audit.Record(ctx, rec); err != nil {
		o.logger.Error("audit write failed for escalation event",
			"trace_id", ev.TraceID, "error", err)
	}
}

package escalation

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/internal/metrics"
	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

const (
	messageExcerptLimit = 200
	defaultDedupWindow  = 10 * time.Minute
)

// Engine converts an emergency classification into a prioritized,
// partially-idempotent sequence of notification and dispatch actions.
type Engine struct {
	dispatcher  ports.Dispatcher
	audit       ports.AuditSink
	deduper     ports.IncidentDeduper
	dedupWindow time.Duration
	metrics     *metrics.ControlPlane
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures the Engine.
type Option func(*Engine)

// WithAuditSink sets the audit sink.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(e *Engine) { e.audit = sink }
}

// WithDeduper enables incident deduplication: repeated signals for the same
// conversation within the window reuse the first incident and skip
// re-notification (documentation still runs).
func WithDeduper(d ports.IncidentDeduper) Option {
	return func(e *Engine) { e.deduper = d }
}

// WithDedupWindow overrides the deduplication TTL.
func WithDedupWindow(window time.Duration) Option {
	return func(e *Engine) { e.dedupWindow = window }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.ControlPlane) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an escalation engine over a dispatch transport.
func NewEngine(dispatcher ports.Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		dispatcher:  dispatcher,
		dedupWindow: defaultDedupWindow,
		metrics:     metrics.New(),
		logger:      logging.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ShouldEscalate is the single gate other components must consult before
// suppressing escalation: true iff the classifier marked an emergency and a
// severity is present.
func (e *Engine) ShouldEscalate(c domain.Classification) bool {
	return c.IsEmergency && c.EmergencySeverity != ""
}

// Escalate builds the action plan for the context's severity and category,
// executes every action sequentially in priority order, and returns the
// aggregated result. One failed action never aborts the remaining plan, and
// Escalate itself never fails: an audit write failure is logged loudly and
// the escalation proceeds, since an un-audited escalation beats no
// escalation at all.
func (e *Engine) Escalate(ctx context.Context, c domain.Classification, ec domain.EscalationContext) domain.EscalationResult {
	incidentID := e.newID()
	plan := BuildPlan(ec.Severity, ec.Category)

	// Deduplicate repeated signals within the window. A known incident
	// keeps only the documentation step; paging the same emergency twice
	// creates alarm fatigue without adding safety.
	if e.deduper != nil && ec.User.ConversationID != "" {
		key := ec.User.ConversationID + ":" + string(ec.Severity)
		owner, created, err := e.deduper.Reserve(ctx, key, incidentID, e.dedupWindow)
		switch {
		case err != nil:
			e.logger.Warn("incident dedup unavailable, escalating anyway", "error", err)
		case !created:
			incidentID = owner
			plan = documentOnly(plan)
			e.logger.Info("duplicate emergency signal, reusing incident",
				"incident_id", incidentID, "conversation_id", ec.User.ConversationID)
		}
	}

	executed := make([]domain.EscalationAction, 0, len(plan))
	requires911 := false
	directorNotified := false

	for _, action := range plan {
		if err := e.dispatch(ctx, action, ec); err != nil {
			e.logger.Error("escalation action failed, continuing plan",
				"incident_id", incidentID, "action", string(action.Type), "error", err)
			e.countAction(action.Type, "failed")
			continue
		}
		ts := e.now()
		action.Executed = true
		action.Timestamp = &ts
		executed = append(executed, action)
		e.countAction(action.Type, "executed")

		switch action.Type {
		case domain.ActionCall911:
			requires911 = true
		case domain.ActionNotifyMedicalDirector:
			directorNotified = true
		}
	}

	result := domain.EscalationResult{
		Escalated:               true,
		IncidentID:              incidentID,
		Severity:                ec.Severity,
		Actions:                 executed,
		Message:                 BuildMessage(ec.Severity, ec.Category, executed),
		Recommendations:         Recommendations(ec.Severity, ec.Category),
		RequiresImmediate911:    requires911,
		MedicalDirectorNotified: directorNotified,
	}

	e.writeAudit(ctx, ec, result)
	if e.metrics != nil {
		e.metrics.Escalations.WithLabelValues(ec.Category, ec.Severity.Coarse()).Inc()
	}

	return result
}

// dispatch invokes the transport for one action, converting a panic into an
// error so a misbehaving integration cannot abort the plan.
func (e *Engine) dispatch(ctx context.Context, action domain.EscalationAction, ec domain.EscalationContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &dispatchPanic{value: r}
		}
	}()
	return e.dispatcher.Dispatch(ctx, action, ec)
}

type dispatchPanic struct{ value any }

func (p *dispatchPanic) Error() string { return "dispatcher panic" }

func documentOnly(plan []domain.EscalationAction) []domain.EscalationAction {
	out := make([]domain.EscalationAction, 0, 1)
	for _, a := range plan {
		if a.Type == domain.ActionDocumentIncident {
			out = append(out, a)
		}
	}
	return out
}

// writeAudit records one entry for the whole escalation. The message
// excerpt is truncated and the raw user message is never stored beyond it.
func (e *Engine) writeAudit(ctx context.Context, ec domain.EscalationContext, result domain.EscalationResult) {
	if e.audit == nil {
		return
	}

	types := make([]string, 0, len(result.Actions))
	for _, a := range result.Actions {
		types = append(types, string(a.Type))
	}

	rec := domain.AuditRecord{
		ID:       e.newID(),
		UserID:   ec.User.UserID,
		Action:   "emergency_escalation",
		Resource: result.IncidentID,
		Metadata: map[string]any{
			"severity":          string(ec.Severity),
			"category":          ec.Category,
			"keywords":          ec.Keywords,
			"message_excerpt":   truncate(ec.User.Message, messageExcerptLimit),
			"executed_actions":  types,
			"requires_911":      result.RequiresImmediate911,
			"director_notified": result.MedicalDirectorNotified,
			"conversation_id":   ec.User.ConversationID,
		},
		PHIAccessed: true,
		CreatedAt:   e.now(),
	}

	if err := e.audit.Record(ctx, rec); err != nil {
		// Never fail a clinical escalation because audit logging failed.
		e.logger.Error("AUDIT WRITE FAILED for emergency escalation",
			"incident_id", result.IncidentID, "severity", string(ec.Severity), "error", err)
	}
}

func (e *Engine) countAction(t domain.ActionType, status string) {
	if e.metrics != nil {
		e.metrics.EscalationActions.WithLabelValues(string(t), status).Inc()
	}
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

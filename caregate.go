package caregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/internal/metrics"
	"github.com/caregate/caregate/pkg/adapters/notify"
	"github.com/caregate/caregate/pkg/adapters/rules"
	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/escalation"
	"github.com/caregate/caregate/pkg/ports"
	"github.com/caregate/caregate/pkg/registry"
	"github.com/caregate/caregate/pkg/sandwich"
	"github.com/caregate/caregate/pkg/tools"
)

// Version is the library version, injected at build time for releases.
var Version = "dev"

// ControlPlane is the high-level entry point: it wires the tool execution
// engine, the emergency escalation engine, and the safety sandwich
// orchestrator, and routes classified queries between them.
type ControlPlane struct {
	registry   *registry.Registry
	engine     *registry.Engine
	escalation *escalation.Engine
	sandwich   *sandwich.Orchestrator
	retriever  ports.Retriever

	audit       ports.AuditSink
	dispatcher  ports.Dispatcher
	deduper     ports.IncidentDeduper
	pre         ports.PreChecker
	gen         ports.Generator
	post        ports.PostChecker
	sandwichCfg sandwich.Config
	metrics     *metrics.ControlPlane
	logger      *slog.Logger
	extraTools  []registry.ClinicalTool
	skipDefault bool
}

// Option defines a functional option for configuring the ControlPlane.
type Option func(*ControlPlane)

// WithLogger sets a structured logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(cp *ControlPlane) { cp.logger = logger }
}

// WithAuditSink sets the audit sink shared by all components.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(cp *ControlPlane) { cp.audit = sink }
}

// WithDispatcher sets the escalation dispatch transport.
func WithDispatcher(d ports.Dispatcher) Option {
	return func(cp *ControlPlane) { cp.dispatcher = d }
}

// WithDeduper enables escalation incident deduplication.
func WithDeduper(d ports.IncidentDeduper) Option {
	return func(cp *ControlPlane) { cp.deduper = d }
}

// WithSandwichConfig sets the safety sandwich configuration.
func WithSandwichConfig(cfg sandwich.Config) Option {
	return func(cp *ControlPlane) { cp.sandwichCfg = cfg }
}

// WithGenerator sets the local generation model client.
func WithGenerator(g ports.Generator) Option {
	return func(cp *ControlPlane) { cp.gen = g }
}

// WithPreChecker replaces the rule-based pre-checker.
func WithPreChecker(p ports.PreChecker) Option {
	return func(cp *ControlPlane) { cp.pre = p }
}

// WithPostChecker replaces the rule-based post-checker.
func WithPostChecker(p ports.PostChecker) Option {
	return func(cp *ControlPlane) { cp.post = p }
}

// WithRetriever sets the retrieval service client.
func WithRetriever(r ports.Retriever) Option {
	return func(cp *ControlPlane) { cp.retriever = r }
}

// WithMetrics sets a shared metrics collector.
func WithMetrics(m *metrics.ControlPlane) Option {
	return func(cp *ControlPlane) { cp.metrics = m }
}

// WithTools registers additional clinical tools on top of the defaults.
func WithTools(extra ...registry.ClinicalTool) Option {
	return func(cp *ControlPlane) { cp.extraTools = append(cp.extraTools, extra...) }
}

// WithoutDefaultTools skips registration of the standard tool set.
func WithoutDefaultTools() Option {
	return func(cp *ControlPlane) { cp.skipDefault = true }
}

// New initializes the control plane. Defaults: no-op logger, logging
// dispatcher, rule-based pre/post checkers, the standard tool set, and the
// conservative sandwich configuration.
func New(opts ...Option) (*ControlPlane, error) {
	cp := &ControlPlane{
		registry:    registry.NewRegistry(),
		sandwichCfg: sandwich.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cp)
	}

	if cp.logger == nil {
		cp.logger = logging.NewNop()
	}
	if cp.metrics == nil {
		cp.metrics = metrics.New()
	}
	if cp.dispatcher == nil {
		cp.dispatcher = notify.NewLogDispatcher(
			notify.WithLogger(cp.logger),
			notify.WithMetrics(cp.metrics),
		)
	}
	if cp.pre == nil {
		cp.pre = rules.NewPreChecker()
	}
	if cp.post == nil {
		cp.post = rules.NewPostChecker()
	}

	if !cp.skipDefault {
		for _, tool := range tools.Defaults() {
			if err := cp.registry.Register(tool); err != nil {
				return nil, err
			}
		}
	}
	for _, tool := range cp.extraTools {
		if err := cp.registry.Register(tool); err != nil {
			return nil, err
		}
	}

	cp.engine = registry.NewEngine(cp.registry,
		registry.WithAuditSink(cp.audit),
		registry.WithMetrics(cp.metrics),
		registry.WithLogger(cp.logger),
	)

	escOpts := []escalation.Option{
		escalation.WithAuditSink(cp.audit),
		escalation.WithMetrics(cp.metrics),
		escalation.WithLogger(cp.logger),
	}
	if cp.deduper != nil {
		escOpts = append(escOpts, escalation.WithDeduper(cp.deduper))
	}
	cp.escalation = escalation.NewEngine(cp.dispatcher, escOpts...)

	cp.sandwich = sandwich.New(cp.sandwichCfg, cp.pre, cp.gen, cp.post,
		sandwich.WithRetriever(cp.retriever),
		sandwich.WithAuditSink(cp.audit),
		sandwich.WithMetrics(cp.metrics),
		sandwich.WithLogger(cp.logger),
	)

	return cp, nil
}

// Query is one inbound classified user query.
type Query struct {
	Text           string
	UserID         string
	ConversationID string

	// Tool execution fields, used when the intent routes to a tool.
	ToolID     string
	Parameters map[string]any

	// Emergency context fields, used when escalation fires.
	Category string
	Keywords []string
}

// Outcome is the routed response. Exactly one payload field is set,
// matching Kind.
type Outcome struct {
	Kind       string                                `json:"kind"` // escalation | tool | retrieval | generation
	Escalation *domain.EscalationResult              `json:"escalation,omitempty"`
	Tool       *registry.ChatExecution               `json:"tool,omitempty"`
	Chunks     []domain.RetrievedChunk               `json:"chunks,omitempty"`
	Generation *domain.GenerationOrchestrationResult `json:"generation,omitempty"`
}

// Route dispatches one classified query. The escalation gate runs first
// and short-circuits every other path; otherwise the classifier's intent
// picks the tool engine, direct retrieval, or the safety sandwich.
func (cp *ControlPlane) Route(ctx context.Context, c domain.Classification, q Query) (Outcome, error) {
	if cp.ShouldEscalate(c) {
		result := cp.Escalate(ctx, c, domain.EscalationContext{
			Severity: c.EmergencySeverity,
			Category: q.Category,
			Keywords: q.Keywords,
			User: domain.UserContext{
				UserID:         q.UserID,
				ConversationID: q.ConversationID,
				Message:        q.Text,
			},
		})
		return Outcome{Kind: "escalation", Escalation: &result}, nil
	}

	switch c.Intent {
	case "tool":
		chat := cp.ExecuteToolInChat(ctx, q.ToolID, q.Parameters, q.UserID, q.ConversationID)
		return Outcome{Kind: "tool", Tool: &chat}, nil

	case "retrieval":
		if cp.retriever == nil {
			return Outcome{}, fmt.Errorf("retrieval intent with no retriever configured")
		}
		chunks, err := cp.retriever.Retrieve(ctx, q.Text, cp.sandwichCfg.Generation.TopK)
		if err != nil {
			return Outcome{}, fmt.Errorf("retrieving: %w", err)
		}
		return Outcome{Kind: "retrieval", Chunks: chunks}, nil

	default:
		result := cp.RunSafetySandwich(ctx, domain.LocalGenerationRequest{
			Query:          q.Text,
			Intent:         c.Intent,
			RiskLevel:      c.RiskLevel,
			UserID:         q.UserID,
			ConversationID: q.ConversationID,
		})
		return Outcome{Kind: "generation", Generation: &result}, nil
	}
}

// ListTools returns every registered tool's metadata and schema.
func (cp *ControlPlane) ListTools() []registry.ToolInfo {
	return cp.registry.List()
}

// ToolInfo returns metadata and schema for one tool.
func (cp *ControlPlane) ToolInfo(id string) (registry.ToolInfo, error) {
	return cp.registry.Info(id)
}

// ToolsByTier filters the registry by subscription tier.
func (cp *ControlPlane) ToolsByTier(tier domain.SubscriptionTier) []registry.ToolInfo {
	return cp.registry.ByTier(tier)
}

// ToolStatistics returns the tool count per category.
func (cp *ControlPlane) ToolStatistics() map[string]int {
	return cp.registry.Statistics()
}

// ValidateTool validates parameters without executing.
func (cp *ControlPlane) ValidateTool(req domain.ExecuteToolRequest) domain.ValidationResult {
	return cp.engine.ValidateExecution(req)
}

// ExecuteTool runs the full execution pipeline.
func (cp *ControlPlane) ExecuteTool(ctx context.Context, req domain.ExecuteToolRequest) (domain.ToolExecutionResult, error) {
	return cp.engine.Execute(ctx, req)
}

// ExecuteToolInChat executes a tool and renders the result for chat.
func (cp *ControlPlane) ExecuteToolInChat(ctx context.Context, toolID string, params map[string]any, userID, conversationID string) registry.ChatExecution {
	return cp.engine.ExecuteInChat(ctx, toolID, params, userID, conversationID)
}

// ShouldEscalate reports whether a classification demands escalation.
func (cp *ControlPlane) ShouldEscalate(c domain.Classification) bool {
	return cp.escalation.ShouldEscalate(c)
}

// Escalate runs the emergency escalation engine.
func (cp *ControlPlane) Escalate(ctx context.Context, c domain.Classification, ec domain.EscalationContext) domain.EscalationResult {
	return cp.escalation.Escalate(ctx, c, ec)
}

// RunSafetySandwich runs the local-generation safety sandwich.
func (cp *ControlPlane) RunSafetySandwich(ctx context.Context, req domain.LocalGenerationRequest) domain.GenerationOrchestrationResult {
	return cp.sandwich.Run(ctx, req)
}

// Metrics exposes the shared metrics collector (for the /metrics endpoint).
func (cp *ControlPlane) Metrics() *metrics.ControlPlane {
	return cp.metrics
}

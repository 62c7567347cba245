package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/internal/metrics"
	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

// phiCategories marks tool categories whose parameters carry patient data.
// Audit entries for these record counts and flags only, never values.
var phiCategories = map[string]bool{
	"lab":    true,
	"dosage": true,
}

// Engine validates, executes, and formats clinical tool runs, emitting one
// audit record and a set of metrics per execution.
type Engine struct {
	registry *Registry
	audit    ports.AuditSink
	metrics  *metrics.ControlPlane
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithAuditSink sets the audit sink. Without one, audit writes are skipped.
func WithAuditSink(sink ports.AuditSink) EngineOption {
	return func(e *Engine) { e.audit = sink }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.ControlPlane) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an execution engine over a registry.
func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		metrics:  metrics.New(),
		logger:   logging.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the underlying tool registry.
func (e *Engine) Registry() *Registry { return e.registry }

// ValidateExecution looks up the tool and delegates to its validator.
// Validation never returns an error to the caller: an unknown tool ID
// yields a failed ValidationResult.
func (e *Engine) ValidateExecution(req domain.ExecuteToolRequest) domain.ValidationResult {
	tool, err := e.registry.Get(req.ToolID)
	if err != nil {
		return domain.ValidationResult{
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}
	return tool.Validate(req.Parameters)
}

// Execute runs the full tool execution pipeline. Domain failures
// (validation, tool logic, panic) are always converted into a non-error
// failure result; the only error ever returned is domain.ErrToolNotFound,
// which indicates a caller or configuration bug. Even then the returned
// result is populated so boundary layers can render it.
func (e *Engine) Execute(ctx context.Context, req domain.ExecuteToolRequest) (domain.ToolExecutionResult, error) {
	started := e.now()

	tool, err := e.registry.Get(req.ToolID)
	if err != nil {
		e.count(req.ToolID, "not_found")
		return e.failure(started, err.Error()), err
	}
	meta := tool.Metadata()

	complexity := complexityCategory(req.Parameters)
	e.observeComplexity(req.ToolID, complexity)

	validation := tool.Validate(req.Parameters)
	if !validation.Valid {
		e.count(req.ToolID, "validation_failed")
		e.countError(req.ToolID, "validation")
		e.writeAudit(ctx, req, meta, auditEntry{
			status:     "validation_failed",
			duration:   e.now().Sub(started),
			errorCount: len(validation.Errors),
		})
		res := e.failure(started, validation.Errors...)
		res.Warnings = validation.Warnings
		return res, nil
	}

	output, execErr := e.runTool(ctx, tool, req.Parameters)
	duration := e.now().Sub(started)
	e.observeDuration(req.ToolID, duration)

	if execErr != nil {
		kind := categorizeError(execErr)
		e.count(req.ToolID, "error")
		e.countError(req.ToolID, kind)
		e.logger.Warn("tool execution failed",
			"tool", req.ToolID, "kind", kind, "error", execErr)
		e.writeAudit(ctx, req, meta, auditEntry{
			status:     "error",
			duration:   duration,
			errorCount: 1,
		})
		return e.failure(started, fmt.Sprintf("execution failed: %v", execErr)), nil
	}

	e.count(req.ToolID, "success")
	if auditErr := e.writeAudit(ctx, req, meta, auditEntry{
		status:      "success",
		duration:    duration,
		hasWarnings: len(output.Warnings) > 0 || len(validation.Warnings) > 0,
	}); auditErr != nil {
		// Tool results are replayable; an execution whose audit cannot be
		// guaranteed recorded fails closed.
		e.logger.Error("audit write failed, failing tool execution",
			"tool", req.ToolID, "error", auditErr)
		return e.failure(started, domain.ErrAuditUnavailable.Error()), nil
	}

	return domain.ToolExecutionResult{
		Success:         true,
		Data:            output.Data,
		Warnings:        append(validation.Warnings, output.Warnings...),
		Interpretation:  output.Interpretation,
		Disclaimer:      output.Disclaimer,
		ExecutionTimeMs: duration.Milliseconds(),
		Timestamp:       e.now(),
	}, nil
}

// runTool invokes the tool's domain logic, converting a panic into an error
// so nothing escapes the Execute boundary.
func (e *Engine) runTool(ctx context.Context, tool ClinicalTool, params map[string]any) (out *domain.ToolOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("tool panic: %v", r)
		}
	}()
	out, err = tool.Execute(ctx, params)
	if err == nil && out == nil {
		err = errors.New("tool returned no output")
	}
	return out, err
}

// ChatExecution is a tool execution plus its human-readable rendering.
type ChatExecution struct {
	ToolID           string                      `json:"tool_id"`
	ToolName         string                      `json:"tool_name"`
	Result           domain.ToolExecutionResult  `json:"result"`
	FormattedForChat string                      `json:"formatted_for_chat"`
}

// ExecuteInChat builds a request, executes it, and renders the result for
// chat. An unknown tool ID degrades to a failure result here; formatting
// errors degrade to the generic rendering. This path never returns an error.
func (e *Engine) ExecuteInChat(ctx context.Context, toolID string, params map[string]any, userID, conversationID string) ChatExecution {
	req := domain.ExecuteToolRequest{
		ToolID:         toolID,
		Parameters:     params,
		UserID:         userID,
		ConversationID: conversationID,
	}

	res, err := e.Execute(ctx, req)
	chat := ChatExecution{ToolID: toolID, Result: res}

	if err != nil {
		chat.FormattedForChat = formatError(toolID, res)
		return chat
	}

	tool, lookupErr := e.registry.Get(toolID)
	if lookupErr == nil {
		meta := tool.Metadata()
		chat.ToolName = meta.Name
		chat.FormattedForChat = FormatForChat(meta, res)
	}
	return chat
}

type auditEntry struct {
	status      string
	duration    time.Duration
	errorCount  int
	hasWarnings bool
}

func (e *Engine) writeAudit(ctx context.Context, req domain.ExecuteToolRequest, meta domain.ToolMetadata, entry auditEntry) error {
	if e.audit == nil {
		return nil
	}
	rec := domain.AuditRecord{
		ID:       e.newID(),
		UserID:   req.UserID,
		Action:   "tool_execute",
		Resource: req.ToolID,
		Metadata: map[string]any{
			"status":          entry.status,
			"duration_ms":     entry.duration.Milliseconds(),
			"parameter_count": len(req.Parameters),
			"error_count":     entry.errorCount,
			"has_warnings":    entry.hasWarnings,
			"conversation_id": req.ConversationID,
		},
		PHIAccessed: phiCategories[meta.Category],
		CreatedAt:   e.now(),
	}
	if err := e.audit.Record(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuditUnavailable, err)
	}
	return nil
}

func (e *Engine) failure(started time.Time, errs ...string) domain.ToolExecutionResult {
	return domain.ToolExecutionResult{
		Success:         false,
		Errors:          errs,
		ExecutionTimeMs: e.now().Sub(started).Milliseconds(),
		Timestamp:       e.now(),
	}
}

func (e *Engine) count(tool, status string) {
	if e.metrics != nil {
		e.metrics.ToolExecutions.WithLabelValues(tool, status).Inc()
	}
}

func (e *Engine) countError(tool, kind string) {
	if e.metrics != nil {
		e.metrics.ToolErrors.WithLabelValues(tool, kind).Inc()
	}
}

func (e *Engine) observeComplexity(tool, category string) {
	if e.metrics != nil {
		e.metrics.ToolComplexity.WithLabelValues(tool, category).Inc()
	}
}

func (e *Engine) observeDuration(tool string, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
	e.metrics.ToolDurationTier.WithLabelValues(tool, durationTier(d)).Inc()
}

// complexityCategory derives a coarse label from parameter count and
// nesting depth.
func complexityCategory(params map[string]any) string {
	score := len(params)
	for _, v := range params {
		switch v.(type) {
		case map[string]any, []any:
			score += 2
		}
	}
	switch {
	case score <= 3:
		return "simple"
	case score <= 8:
		return "moderate"
	default:
		return "complex"
	}
}

func durationTier(d time.Duration) string {
	switch {
	case d < 50*time.Millisecond:
		return "fast"
	case d < 250*time.Millisecond:
		return "normal"
	default:
		return "slow"
	}
}

func categorizeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "execution"
	}
}

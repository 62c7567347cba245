// Package notify provides the notification/dispatch transport adapter.
// Real paging, 911 bridge, and director alert integrations live outside
// this core; this adapter logs each dispatch and rate-limits the paging
// channels so a misfiring upstream cannot cause a page storm.
package notify

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/caregate/caregate/internal/logging"
	"github.com/caregate/caregate/internal/metrics"
	"github.com/caregate/caregate/pkg/domain"
)

// ratedChannels are the action types subject to rate limiting. CALL_911 and
// DOCUMENT_INCIDENT are never limited.
var ratedChannels = map[domain.ActionType]bool{
	domain.ActionNotifyMedicalDirector: true,
	domain.ActionPageOnCall:            true,
	domain.ActionRapidResponseTeam:     true,
}

// LogDispatcher logs each escalation action as a structured dispatch event.
type LogDispatcher struct {
	logger   *slog.Logger
	metrics  *metrics.ControlPlane
	limiters map[domain.ActionType]*rate.Limiter
}

// Option configures the LogDispatcher.
type Option func(*LogDispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *LogDispatcher) { d.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.ControlPlane) Option {
	return func(d *LogDispatcher) { d.metrics = m }
}

// WithRateLimit overrides the per-channel paging rate (events per second
// with the given burst).
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(d *LogDispatcher) {
		for ch := range ratedChannels {
			d.limiters[ch] = rate.NewLimiter(r, burst)
		}
	}
}

// NewLogDispatcher creates the logging dispatcher. Paging channels default
// to 1 event/sec with burst 5.
func NewLogDispatcher(opts ...Option) *LogDispatcher {
	d := &LogDispatcher{
		logger:   logging.NewNop(),
		limiters: make(map[domain.ActionType]*rate.Limiter),
	}
	for ch := range ratedChannels {
		d.limiters[ch] = rate.NewLimiter(rate.Limit(1), 5)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch logs one action. For rate-limited channels it waits for a slot,
// honoring the caller's context; a 911 dispatch never waits.
func (d *LogDispatcher) Dispatch(ctx context.Context, action domain.EscalationAction, ec domain.EscalationContext) error {
	if limiter, ok := d.limiters[action.Type]; ok {
		if err := limiter.Wait(ctx); err != nil {
			d.count(action.Type, "rate_limited")
			return err
		}
	}

	d.logger.Info("DISPATCH",
		"action", string(action.Type),
		"priority", action.Priority,
		"description", action.Description,
		"severity", string(ec.Severity),
		"category", ec.Category,
		"user_id", ec.User.UserID,
		"conversation_id", ec.User.ConversationID,
	)
	d.count(action.Type, "sent")
	return nil
}

func (d *LogDispatcher) count(t domain.ActionType, status string) {
	if d.metrics != nil {
		d.metrics.DispatchSends.WithLabelValues(string(t), status).Inc()
	}
}

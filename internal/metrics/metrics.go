// Package metrics provides Prometheus metrics for the medical control plane.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ControlPlane collects and exposes control-plane Prometheus metrics.
type ControlPlane struct {
	registry *prometheus.Registry

	// Tool execution metrics
	ToolExecutions    *prometheus.CounterVec
	ToolDuration      *prometheus.HistogramVec
	ToolDurationTier  *prometheus.CounterVec
	ToolComplexity    *prometheus.CounterVec
	ToolErrors        *prometheus.CounterVec

	// Escalation metrics
	Escalations       *prometheus.CounterVec
	EscalationActions *prometheus.CounterVec

	// Safety sandwich metrics
	SandwichDecisions *prometheus.CounterVec
	StageLatency      *prometheus.HistogramVec
	StageFailures     *prometheus.CounterVec

	// Dispatch transport metrics
	DispatchSends *prometheus.CounterVec
}

// New creates a control plane metrics collector on a private registry.
func New() *ControlPlane {
	registry := prometheus.NewRegistry()

	cp := &ControlPlane{
		registry: registry,

		ToolExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_tool_executions_total",
				Help: "Total number of clinical tool executions",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caregate_tool_duration_seconds",
				Help:    "Wall-clock duration of tool executions",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"tool"},
		),
		ToolDurationTier: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_tool_duration_tier_total",
				Help: "Tool executions bucketed into coarse duration tiers",
			},
			[]string{"tool", "tier"},
		),
		ToolComplexity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_tool_parameter_complexity_total",
				Help: "Tool executions bucketed by parameter complexity category",
			},
			[]string{"tool", "category"},
		),
		ToolErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_tool_errors_total",
				Help: "Tool execution failures by error kind",
			},
			[]string{"tool", "kind"},
		),

		Escalations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_escalations_total",
				Help: "Emergency escalations by category and coarse severity",
			},
			[]string{"category", "severity"},
		),
		EscalationActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_escalation_actions_total",
				Help: "Escalation actions by type and outcome",
			},
			[]string{"type", "status"},
		),

		SandwichDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_sandwich_decisions_total",
				Help: "Safety sandwich runs by final decision",
			},
			[]string{"decision"},
		),
		StageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caregate_sandwich_stage_seconds",
				Help:    "Latency of individual safety sandwich stages",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_sandwich_stage_failures_total",
				Help: "Safety sandwich stage failures (errors and timeouts)",
			},
			[]string{"stage"},
		),

		DispatchSends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caregate_dispatch_sends_total",
				Help: "Notification dispatch attempts by channel and outcome",
			},
			[]string{"channel", "status"},
		),
	}

	registry.MustRegister(
		cp.ToolExecutions,
		cp.ToolDuration,
		cp.ToolDurationTier,
		cp.ToolComplexity,
		cp.ToolErrors,
		cp.Escalations,
		cp.EscalationActions,
		cp.SandwichDecisions,
		cp.StageLatency,
		cp.StageFailures,
		cp.DispatchSends,
	)

	return cp
}

// Registry exposes the underlying registry for custom collectors.
func (cp *ControlPlane) Registry() *prometheus.Registry {
	return cp.registry
}

// Handler returns an HTTP handler serving the metrics in Prometheus format.
func (cp *ControlPlane) Handler() http.Handler {
	return promhttp.HandlerFor(cp.registry, promhttp.HandlerOpts{})
}

// Package metrics holds the Prometheus instruments exported on the admin /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for ToolInvocations.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeConfigError     = "configuration_error"
	OutcomeAPIError        = "api_error"
	OutcomeError           = "error"
)

var (
	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "populi_mcp_tool_invocations_total",
			Help: "Total number of tool invocations by outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "populi_mcp_tool_duration_seconds",
			Help: "Duration of tool invocations in seconds",
		},
		[]string{"tool"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "populi_mcp_upstream_requests_total",
			Help: "Total number of upstream HTTP requests by response status",
		},
		[]string{"service", "method", "status"},
	)
)

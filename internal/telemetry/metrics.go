package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	backendRequests  *prometheus.CounterVec
	discoveryRefresh *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_mcp_tool_calls_total",
				Help: "Total number of tool calls by outcome",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvis_mcp_tool_call_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"tool"},
		),
		backendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_mcp_backend_requests_total",
				Help: "Total number of backend HTTP requests by outcome",
			},
			[]string{"service", "outcome"},
		),
		discoveryRefresh: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_mcp_discovery_refresh_total",
				Help: "Total number of discovery refresh attempts",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveToolCall(tool, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBackendRequest(service, outcome string) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(service, outcome).Inc()
}

func (m *Metrics) ObserveDiscoveryRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.discoveryRefresh.WithLabelValues(result).Inc()
}

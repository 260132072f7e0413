// Package telemetry exposes the adapter's liveness and metrics surface.
package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"jarvismcp/internal/domain"
)

type HealthReport struct {
	Status            string          `json:"status"`
	EnabledToolGroups []string        `json:"enabled_tool_groups"`
	Discovery         DiscoveryReport `json:"discovery"`
}

type DiscoveryReport struct {
	Mode        string     `json:"mode"`
	LastSuccess *time.Time `json:"lastSuccess"`
	LastError   string     `json:"lastError,omitempty"`
}

// NewDiscoveryReport converts cached resolver state into its wire shape.
func NewDiscoveryReport(state domain.DiscoveryState) DiscoveryReport {
	report := DiscoveryReport{
		Mode:      string(state.Mode),
		LastError: state.LastError,
	}
	if !state.LastSuccess.IsZero() {
		ts := state.LastSuccess
		report.LastSuccess = &ts
	}
	return report
}

// HealthHandler serves the liveness report. The report function must only
// read cached state; it is called on every request and must never block on
// a backend.
func HealthHandler(report func() HealthReport) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := report()
		if body.Status == "" {
			body.Status = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})
}

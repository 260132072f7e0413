package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/backend"
	"jarvismcp/internal/registry"
)

// Health builds the fleet-wide health check group. Unlike debug, it speaks
// full service names and reports per-service latency.
func Health(checker *backend.HealthChecker) registry.Group {
	return registry.Group{
		Name: "health",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name:        "health_check",
					Description: "Check health status of all jarvis services. Returns which services are up/down and their response times.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"services": stringListProp("Optional: specific services to check. If not specified, checks all."),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					results := checker.ProbeAll(ctx, argStringSlice(args, "services"))

					healthy := 0
					lines := make([]string, 0, len(results))
					for _, probe := range results {
						switch {
						case !probe.Known:
							lines = append(lines, fmt.Sprintf("  %s: unknown service", probe.Service))
						case probe.Healthy:
							healthy++
							lines = append(lines, fmt.Sprintf("  %s: OK %dms", probe.Service, probe.Latency.Milliseconds()))
						default:
							lines = append(lines, fmt.Sprintf("  %s: FAIL %s", probe.Service, probe.Detail))
						}
					}

					header := fmt.Sprintf("=== Jarvis Health Check ===\nStatus: %d/%d services healthy\n\n", healthy, len(results))
					return header + strings.Join(lines, "\n"), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "health_service",
					Description: "Check health of a specific jarvis service with detailed response.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"service": stringProp("Service to check (e.g., 'jarvis-auth', 'jarvis-logs')"),
					}, "service"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					service := argString(args, "service", "")
					detail, err := checker.Detail(ctx, service)
					if err != nil {
						return "", err
					}
					if detail.Err != "" {
						return fmt.Sprintf("%s: Connection failed - %s", service, detail.Err), nil
					}

					text := fmt.Sprintf("=== %s Health ===\n", service)
					text += fmt.Sprintf("URL: %s\n", detail.URL)
					text += fmt.Sprintf("Status: %d\n", detail.Status)
					text += fmt.Sprintf("Response Time: %dms\n", detail.Latency.Milliseconds())
					if detail.Status == 200 {
						text += "Response: " + detail.Body
					} else {
						text += fmt.Sprintf("Error: HTTP %d", detail.Status)
					}
					return truncate(text), nil
				},
			},
		},
	}
}

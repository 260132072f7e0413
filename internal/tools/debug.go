package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/backend"
	"jarvismcp/internal/domain"
	"jarvismcp/internal/registry"
)

// Debug tools use the short service names the fleet's operators type.
var debugServices = map[string]string{
	"logs":           domain.ServiceLogs,
	"auth":           domain.ServiceAuth,
	"recipes":        domain.ServiceRecipes,
	"command-center": domain.ServiceCommandCenter,
}

var debugServiceOrder = []string{"logs", "auth", "recipes", "command-center"}

// Debug builds the quick up/down diagnostics group.
func Debug(checker *backend.HealthChecker) registry.Group {
	return registry.Group{
		Name: "debug",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name:        "debug_health",
					Description: "Check health status of jarvis services. Returns which services are up/down.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"services": stringListProp("Specific services to check. If empty, checks all known services."),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					requested := argStringSlice(args, "services")
					if len(requested) == 0 {
						requested = debugServiceOrder
					}

					lines := make([]string, 0, len(requested))
					for _, short := range requested {
						service, ok := debugServices[short]
						if !ok {
							lines = append(lines, fmt.Sprintf("  %s: unknown service", short))
							continue
						}
						probe := checker.Probe(ctx, service)
						switch {
						case probe.Healthy:
							lines = append(lines, fmt.Sprintf("  %s: UP", short))
						case probe.Status != 0:
							lines = append(lines, fmt.Sprintf("  %s: DEGRADED (status %d)", short, probe.Status))
						default:
							lines = append(lines, fmt.Sprintf("  %s: DOWN", short))
						}
					}
					return "=== Service Health Status ===\n" + strings.Join(lines, "\n"), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "debug_service_info",
					Description: "Get detailed information about a specific jarvis service (version, config, etc).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"service": enumProp("Service to get info about", debugServiceOrder...),
					}, "service"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					short := argString(args, "service", "")
					service, ok := debugServices[short]
					if !ok {
						return "", domain.Errorf(domain.CodeInvalidArguments, "tools.debug",
							"unknown service: %s (available: %s)", short, strings.Join(debugServiceOrder, ", "))
					}

					detail, err := checker.Detail(ctx, service)
					if err != nil {
						return "", err
					}

					lines := []string{
						fmt.Sprintf("=== %s ===", short),
						fmt.Sprintf("  URL: %s", detail.URL),
						fmt.Sprintf("  Health endpoint: %s", domain.HealthPaths[service]),
					}
					if detail.Err != "" {
						lines = append(lines, fmt.Sprintf("  Status: UNREACHABLE (%s)", detail.Err))
					} else {
						lines = append(lines, fmt.Sprintf("  Status: %d", detail.Status))
						if detail.Body != "" {
							lines = append(lines, "  Response: "+detail.Body)
						}
					}
					return truncate(strings.Join(lines, "\n")), nil
				},
			},
		},
	}
}

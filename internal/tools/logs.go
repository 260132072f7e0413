package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/backend"
	"jarvismcp/internal/registry"
)

// Logs builds the log-inspection tool group over the jarvis-logs store.
func Logs(logs *backend.LogsClient) registry.Group {
	return registry.Group{
		Name: "logs",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name:        "logs_query",
					Description: "Query logs from jarvis services with optional filters. Returns recent logs matching the criteria.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"service":       stringProp("Filter by service name (e.g., 'llm-proxy', 'command-center')"),
						"level":         enumProp("Filter by log level", "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"),
						"search":        stringProp("Search term to filter log messages"),
						"since_minutes": intProp("Only show logs from the last N minutes (default: 60)"),
						"limit":         intProp("Maximum number of logs to return (default: 50, max: 200)"),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					entries, err := logs.Query(ctx, backend.LogQuery{
						Service: argString(args, "service", ""),
						Level:   argString(args, "level", ""),
						Search:  argString(args, "search", ""),
						Since:   time.Duration(argInt(args, "since_minutes", 60)) * time.Minute,
						Limit:   argInt(args, "limit", backend.DefaultQueryLimit),
					})
					if err != nil {
						return "", err
					}
					return truncate(backend.FormatEntries(entries)), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "logs_tail",
					Description: "Get the most recent logs from a specific service. Like 'tail -f' for jarvis services.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"service": stringProp("Service name to tail logs from"),
						"lines":   intProp("Number of recent log lines to return (default: 30)"),
					}, "service"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					service := argString(args, "service", "")
					entries, err := logs.Tail(ctx, service, argInt(args, "lines", backend.DefaultTailLines))
					if err != nil {
						return "", err
					}
					header := fmt.Sprintf("=== Last %d logs from %s ===\n\n", len(entries), service)
					return truncate(header + backend.FormatEntries(entries)), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "logs_errors",
					Description: "Find recent errors across all jarvis services. Useful for debugging issues.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"since_minutes": intProp("Look for errors in the last N minutes (default: 30)"),
						"service":       stringProp("Optional: filter to a specific service"),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					sinceMinutes := argInt(args, "since_minutes", 30)
					entries, err := logs.Errors(ctx, argString(args, "service", ""), time.Duration(sinceMinutes)*time.Minute)
					if err != nil {
						return "", err
					}
					if len(entries) == 0 {
						return fmt.Sprintf("No errors found in the last %d minutes.", sinceMinutes), nil
					}
					header := fmt.Sprintf("=== Found %d errors in the last %d minutes ===\n\n", len(entries), sinceMinutes)
					return truncate(header + backend.FormatEntries(entries)), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "logs_services",
					Description: "List all services that have sent logs to the logging server.",
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					services, err := logs.Services(ctx)
					if err != nil {
						return "", err
					}
					if len(services) == 0 {
						return "No services have sent logs yet.", nil
					}
					text := "Services with logs:"
					for _, service := range services {
						text += "\n  - " + service
					}
					return text, nil
				},
			},
		},
	}
}

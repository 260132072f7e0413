package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/dockerctl"
	"jarvismcp/internal/registry"
)

// Compose commands run the docker CLI and can take a while on cold pulls;
// give them headroom beyond the runner's own internal timeout.
const composeToolTimeout = 150 * time.Second

// Docker builds the container and compose management group.
func Docker(svc *dockerctl.Service) registry.Group {
	return registry.Group{
		Name: "docker",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_ps",
					Description: "List jarvis Docker containers with name, status, image, and ports. Only shows jarvis-related containers (filtered by name/labels).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"all": boolProp("Include stopped containers (default: false, only running)"),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					containers, err := svc.List(ctx, argBool(args, "all", false))
					if err != nil {
						return "", err
					}
					if len(containers) == 0 {
						return "No jarvis containers found.", nil
					}

					lines := []string{fmt.Sprintf("=== Jarvis Containers (%d) ===", len(containers)), ""}
					for _, c := range containers {
						marker := "-"
						if c.State == "running" {
							marker = "*"
						}
						lines = append(lines, fmt.Sprintf("  %s %-30s %-12s %s", marker, c.Name, c.State, c.Ports))
					}
					lines = append(lines, "", "Image details:")
					for _, c := range containers {
						lines = append(lines, fmt.Sprintf("  %s: %s", c.Name, c.Image))
					}
					return truncate(strings.Join(lines, "\n")), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_logs",
					Description: "Get recent logs from a jarvis Docker container. Supports partial name matching (e.g., 'auth' matches 'jarvis-auth').",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"name":  stringProp("Container name or partial match (e.g., 'auth', 'jarvis-tts')"),
						"lines": intProp("Number of tail lines (default: 100, max: 1000)"),
						"since": stringProp("Only logs since this time (e.g., '1h', '30m')"),
					}, "name"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					name := argString(args, "name", "")
					logs, err := svc.Logs(ctx, name, argInt(args, "lines", dockerctl.DefaultLogLines), argString(args, "since", ""))
					if err != nil {
						return "", err
					}
					if strings.TrimSpace(logs) == "" {
						return fmt.Sprintf("No logs found for '%s'.", name), nil
					}
					return truncate(logs), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_restart",
					Description: "Restart a jarvis Docker container by name (partial match supported).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"name": stringProp("Container name or partial match"),
					}, "name"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					return svc.Restart(ctx, argString(args, "name", ""))
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_stop",
					Description: "Stop a running jarvis Docker container by name (partial match supported).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"name": stringProp("Container name or partial match"),
					}, "name"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					return svc.Stop(ctx, argString(args, "name", ""))
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_start",
					Description: "Start a stopped jarvis Docker container by name (partial match supported).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"name": stringProp("Container name or partial match"),
					}, "name"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					return svc.Start(ctx, argString(args, "name", ""))
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_compose_up",
					Description: "Run 'docker compose up -d' for a jarvis service. Accepts full name (jarvis-auth) or short name (auth).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"service": stringProp("Service name (e.g., 'jarvis-auth' or 'auth')"),
					}, "service"),
				},
				Timeout: composeToolTimeout,
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					return svc.ComposeUp(ctx, argString(args, "service", ""))
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_compose_down",
					Description: "Run 'docker compose down' for a jarvis service. Accepts full name (jarvis-auth) or short name (auth).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"service": stringProp("Service name (e.g., 'jarvis-auth' or 'auth')"),
					}, "service"),
				},
				Timeout: composeToolTimeout,
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					return svc.ComposeDown(ctx, argString(args, "service", ""))
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "docker_compose_list",
					Description: "List jarvis services that have docker-compose files.",
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					projects, err := svc.ComposeProjects()
					if err != nil {
						return "", err
					}
					if len(projects) == 0 {
						return "No jarvis services with compose files found.", nil
					}
					lines := []string{fmt.Sprintf("=== Jarvis Services with Compose Files (%d) ===", len(projects)), ""}
					for _, project := range projects {
						lines = append(lines, fmt.Sprintf("  %-30s %s", project.Name, project.Dir))
					}
					return strings.Join(lines, "\n"), nil
				},
			},
		},
	}
}

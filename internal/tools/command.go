package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/backend"
	"jarvismcp/internal/registry"
)

// The pipeline warms an LLM on first use; a single command can take most
// of a minute and the full suite far longer.
const (
	commandTestTimeout  = 2 * time.Minute
	commandSuiteTimeout = 15 * time.Minute
)

var commandCategories = []string{
	"weather", "calendar", "knowledge", "search", "jokes", "calculator", "sports", "timers",
}

// Command builds the end-to-end voice command testing group over
// jarvis-command-center.
func Command(client *backend.CommandClient) registry.Group {
	return registry.Group{
		Name: "command",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name: "command_test",
					Description: "Test a single voice command through the command-center pipeline. " +
						"Sends the command through warmup -> LLM inference -> tool extraction " +
						"and returns the parsed command name and parameters.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"voice_command": stringProp("The voice command to test (e.g., \"What's the weather in Miami?\")"),
						"timezone":      stringProp("Timezone for date resolution (default: America/New_York)"),
					}, "voice_command"),
				},
				Timeout: commandTestTimeout,
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					result, err := client.Test(ctx,
						argString(args, "voice_command", ""),
						argString(args, "timezone", backend.DefaultTimezone))
					if err != nil {
						return "", err
					}
					return marshalIndent(result)
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name: "command_test_suite",
					Description: "Run a batch of voice command tests with validation. " +
						"Uses built-in test cases and reports pass/fail and success rates per command.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"categories": stringListProp("Filter built-in tests by category. Options: weather, calendar, knowledge, search, jokes, calculator, sports, timers. Omit for all."),
						"timezone":   stringProp("Timezone for date resolution (default: America/New_York)"),
					}),
				},
				Timeout: commandSuiteTimeout,
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					report, err := client.RunSuite(ctx,
						argStringSlice(args, "categories"),
						argString(args, "timezone", backend.DefaultTimezone))
					if err != nil {
						return "", err
					}
					return marshalIndent(report)
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name: "command_test_list",
					Description: "List built-in test cases. Returns the voice commands, " +
						"expected command names, and expected parameters for each test.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"category": enumProp("Filter by category.", commandCategories...),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					var categories []string
					if category := argString(args, "category", ""); category != "" {
						categories = []string{category}
					}
					return marshalIndent(backend.BuiltinCases(categories))
				},
			},
		},
	}
}

func marshalIndent(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return truncate(string(raw)), nil
}

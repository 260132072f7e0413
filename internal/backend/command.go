package backend

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"jarvismcp/internal/domain"
)

const (
	commandTestPath = "/api/v0/test/command"
	DefaultTimezone = "America/New_York"
)

//go:embed cases.yaml
var casesYAML []byte

type TestCase struct {
	Category        string         `yaml:"category" json:"category"`
	VoiceCommand    string         `yaml:"voice_command" json:"voice_command"`
	ExpectedCommand string         `yaml:"expected_command" json:"expected_command"`
	ExpectedParams  map[string]any `yaml:"expected_params" json:"expected_params,omitempty"`
}

type builtinDefinitions struct {
	AvailableCommands []map[string]any `yaml:"available_commands"`
	ClientTools       []map[string]any `yaml:"client_tools"`
	Cases             []TestCase       `yaml:"cases"`
}

var (
	builtinOnce sync.Once
	builtin     builtinDefinitions
)

func loadBuiltin() builtinDefinitions {
	builtinOnce.Do(func() {
		if err := yaml.Unmarshal(casesYAML, &builtin); err != nil {
			// The file is embedded at build time; a parse failure is a bug.
			panic(fmt.Sprintf("parse embedded cases.yaml: %v", err))
		}
	})
	return builtin
}

// BuiltinCases returns the embedded test cases, optionally filtered to the
// given categories.
func BuiltinCases(categories []string) []TestCase {
	cases := loadBuiltin().Cases
	if len(categories) == 0 {
		return cases
	}
	wanted := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		wanted[strings.ToLower(strings.TrimSpace(category))] = struct{}{}
	}
	var filtered []TestCase
	for _, tc := range cases {
		if _, ok := wanted[tc.Category]; ok {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// CommandClient drives the command-center's end-to-end test endpoint.
type CommandClient struct {
	client  *Client
	hasAuth bool
}

func NewCommandClient(client *Client, hasAuth bool) *CommandClient {
	return &CommandClient{client: client, hasAuth: hasAuth}
}

// PipelineResult is the command-center's parse of one voice command.
type PipelineResult struct {
	CommandName string         `json:"command_name"`
	Parameters  map[string]any `json:"parameters"`
	StopReason  string         `json:"stop_reason,omitempty"`
	Error       string         `json:"error,omitempty"`
	Response    string         `json:"response,omitempty"`
}

// Test sends a single voice command through the pipeline:
// warmup -> LLM inference -> tool extraction.
func (c *CommandClient) Test(ctx context.Context, voiceCommand, timezone string) (*PipelineResult, error) {
	voiceCommand = strings.TrimSpace(voiceCommand)
	if voiceCommand == "" {
		return nil, domain.Errorf(domain.CodeInvalidArguments, "command.test", "voice_command must not be empty")
	}
	if !c.hasAuth {
		return nil, domain.Errorf(domain.CodeInvalidArguments, "command.test",
			"no auth credentials configured (JARVIS_APP_ID/JARVIS_APP_KEY)")
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}

	defs := loadBuiltin()
	payload := map[string]any{
		"voice_command":         voiceCommand,
		"available_commands":    defs.AvailableCommands,
		"client_tools":          defs.ClientTools,
		"timezone":              timezone,
		"skip_warmup_inference": true,
	}

	var result PipelineResult
	if err := c.client.PostJSON(ctx, domain.ServiceCommandCenter, commandTestPath, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type CaseResult struct {
	TestCase
	Status           string         `json:"status"` // passed, failed, error
	ActualCommand    string         `json:"actual_command,omitempty"`
	ActualParams     map[string]any `json:"actual_params,omitempty"`
	MissingParams    []string       `json:"missing_params,omitempty"`
	MismatchedParams []string       `json:"mismatched_params,omitempty"`
	Error            string         `json:"error,omitempty"`
}

type SuiteSummary struct {
	Total       int     `json:"total"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Errors      int     `json:"errors"`
	SuccessRate float64 `json:"success_rate"`
}

type SuiteReport struct {
	Summary SuiteSummary `json:"summary"`
	Results []CaseResult `json:"results"`
}

// RunSuite executes the built-in cases (filtered by category) against the
// live pipeline and validates expected command names and parameters.
func (c *CommandClient) RunSuite(ctx context.Context, categories []string, timezone string) (*SuiteReport, error) {
	cases := BuiltinCases(categories)
	if len(cases) == 0 {
		return nil, domain.Errorf(domain.CodeInvalidArguments, "command.suite",
			"no test cases match categories: %s", strings.Join(categories, ", "))
	}

	report := &SuiteReport{Results: make([]CaseResult, 0, len(cases))}
	for _, tc := range cases {
		result := CaseResult{TestCase: tc}

		resp, err := c.Test(ctx, tc.VoiceCommand, timezone)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			report.Summary.Errors++
			report.Results = append(report.Results, result)
			continue
		}

		result.ActualCommand = resp.CommandName
		result.ActualParams = resp.Parameters
		result.MissingParams, result.MismatchedParams = checkParams(tc.ExpectedParams, resp.Parameters)

		if resp.CommandName == tc.ExpectedCommand && len(result.MissingParams) == 0 && len(result.MismatchedParams) == 0 {
			result.Status = "passed"
			report.Summary.Passed++
		} else {
			result.Status = "failed"
			report.Summary.Failed++
		}
		report.Results = append(report.Results, result)
	}

	report.Summary.Total = len(report.Results)
	if attempted := report.Summary.Passed + report.Summary.Failed; attempted > 0 {
		report.Summary.SuccessRate = float64(report.Summary.Passed) / float64(attempted)
	}
	return report, nil
}

func checkParams(expected, actual map[string]any) (missing, mismatched []string) {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			mismatched = append(mismatched, key)
		}
	}
	return missing, mismatched
}

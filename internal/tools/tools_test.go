package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvismcp/internal/domain"
	"jarvismcp/internal/registry"
)

func TestTruncate(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("x", maxOutputChars+50)
	out := truncate(long)
	assert.Len(t, out, maxOutputChars+len("\n... [truncated]"))
	assert.True(t, strings.HasSuffix(out, "\n... [truncated]"))
}

func TestBlock(t *testing.T) {
	out := block([]string{"=== Header ===", "Line: 1"}, "body")
	assert.Equal(t, "=== Header ===\nLine: 1\n\nbody", out)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"name":  "jarvis-auth",
		"empty": "",
		"limit": float64(42),
		"ratio": float64(1.5),
		"all":   true,
		"tags":  []any{"a", "b", 3},
	}

	assert.Equal(t, "jarvis-auth", argString(args, "name", "dflt"))
	assert.Equal(t, "dflt", argString(args, "empty", "dflt"))
	assert.Equal(t, "dflt", argString(args, "missing", "dflt"))

	assert.Equal(t, 42, argInt(args, "limit", 7))
	assert.Equal(t, 7, argInt(args, "missing", 7))

	assert.Equal(t, 1.5, argFloat(args, "ratio", 0))
	assert.Equal(t, 0.0, argFloat(args, "missing", 0))

	assert.True(t, argBool(args, "all", false))
	assert.False(t, argBool(args, "missing", false))

	assert.Equal(t, []string{"a", "b"}, argStringSlice(args, "tags"))
	assert.Nil(t, argStringSlice(args, "missing"))
}

func findTool(t *testing.T, group registry.Group, name string) registry.Tool {
	t.Helper()
	for _, tool := range group.Tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not in group %q", name, group.Name)
	return registry.Tool{}
}

func TestUnitConvert_Handler(t *testing.T) {
	tool := findTool(t, Conversion(), "unit_convert")

	out, err := tool.Handler(context.Background(), map[string]any{
		"value":     float64(100),
		"from_unit": "celsius",
		"to_unit":   "fahrenheit",
	})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, 212.0, payload["result"])
	assert.Equal(t, "celsius", payload["from_unit"])
}

func TestUnitConvert_MissingValue(t *testing.T) {
	tool := findTool(t, Conversion(), "unit_convert")

	_, err := tool.Handler(context.Background(), map[string]any{
		"from_unit": "kg",
		"to_unit":   "lb",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidArguments, domain.CodeFrom(err))
}

func TestUnitConvert_IncompatibleUnits(t *testing.T) {
	tool := findTool(t, Conversion(), "unit_convert")

	_, err := tool.Handler(context.Background(), map[string]any{
		"value":     float64(1),
		"from_unit": "kg",
		"to_unit":   "mile",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible units")
}

func TestUnitList_Handler(t *testing.T) {
	tool := findTool(t, Conversion(), "unit_list")

	out, err := tool.Handler(context.Background(), nil)
	require.NoError(t, err)

	var categories map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &categories))
	assert.Contains(t, categories, "temperature")
	assert.Contains(t, categories["weight"], "kg")
}

// Every group must register cleanly together: unique tool names, handlers
// present, resolvable schemas.
func TestAllGroups_Register(t *testing.T) {
	groups := []registry.Group{
		Logs(nil),
		Debug(nil),
		Health(nil),
		Database(nil),
		Docker(nil),
		Command(nil),
		Conversion(),
	}

	var enabled []string
	for _, group := range groups {
		enabled = append(enabled, group.Name)
	}

	reg, err := registry.New(groups, enabled)
	require.NoError(t, err)
	assert.Equal(t, enabled, reg.Groups())

	seen := map[string]bool{}
	for _, desc := range reg.List() {
		assert.False(t, seen[desc.Name], desc.Name)
		seen[desc.Name] = true
	}
	assert.True(t, seen["logs_query"])
	assert.True(t, seen["db_query"])
	assert.True(t, seen["command_test"])
	assert.True(t, seen["docker_ps"])
}

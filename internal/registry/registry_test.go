package registry

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvismcp/internal/domain"
)

func noopHandler(ctx context.Context, args map[string]any) (string, error) {
	return "ok", nil
}

func group(name string, toolNames ...string) Group {
	g := Group{Name: name}
	for _, toolName := range toolNames {
		g.Tools = append(g.Tools, Tool{
			Descriptor: Descriptor{Name: toolName},
			Handler:    noopHandler,
		})
	}
	return g
}

func TestNew_EnablesSubsetInOrder(t *testing.T) {
	groups := []Group{
		group("logs", "logs_query", "logs_tail"),
		group("health", "health_check"),
		group("db", "db_query"),
	}

	reg, err := New(groups, []string{"health", "logs"})
	require.NoError(t, err)

	assert.Equal(t, []string{"health", "logs"}, reg.Groups())
	assert.Equal(t, 3, reg.Len())

	descriptors := reg.List()
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"health_check", "logs_query", "logs_tail"}, names)

	_, ok := reg.Lookup("db_query")
	assert.False(t, ok, "disabled group must not be registered")
}

func TestNew_UnknownGroup(t *testing.T) {
	_, err := New([]Group{group("logs", "logs_query")}, []string{"logs", "nope"})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConfiguration, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestNew_DuplicateToolName(t *testing.T) {
	groups := []Group{
		group("a", "shared_tool"),
		group("b", "shared_tool"),
	}
	_, err := New(groups, []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConfiguration, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "shared_tool")
}

func TestNew_MissingHandler(t *testing.T) {
	g := Group{Name: "bad", Tools: []Tool{{Descriptor: Descriptor{Name: "broken"}}}}
	_, err := New([]Group{g}, []string{"bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNew_NilSchemaDefaultsToObject(t *testing.T) {
	reg, err := New([]Group{group("g", "tool")}, []string{"g"})
	require.NoError(t, err)

	entry, ok := reg.Lookup("tool")
	require.True(t, ok)
	require.NotNil(t, entry.Resolved)
	assert.NoError(t, entry.Resolved.Validate(map[string]any{"anything": 1}))
}

func TestNew_SchemaValidationIsWired(t *testing.T) {
	g := Group{Name: "g", Tools: []Tool{{
		Descriptor: Descriptor{
			Name: "strict",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name": {Type: "string"},
				},
				Required: []string{"name"},
			},
		},
		Handler: noopHandler,
	}}}

	reg, err := New([]Group{g}, []string{"g"})
	require.NoError(t, err)

	entry, _ := reg.Lookup("strict")
	assert.Error(t, entry.Resolved.Validate(map[string]any{}))
	assert.Error(t, entry.Resolved.Validate(map[string]any{"name": 7}))
	assert.NoError(t, entry.Resolved.Validate(map[string]any{"name": "x"}))
}

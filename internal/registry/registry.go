// Package registry holds the static tool table: per-group descriptors and
// their handlers, assembled once at startup and immutable afterwards.
package registry

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/domain"
)

// Handler executes one tool call with already-validated arguments and
// returns the text payload for the caller.
type Handler func(ctx context.Context, args map[string]any) (string, error)

type Descriptor struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

type Tool struct {
	Descriptor
	Handler Handler
	// Timeout overrides the dispatcher's default execution bound for
	// long-running tools. Zero means default.
	Timeout time.Duration
}

// Group is a named, independently enableable batch of tools.
type Group struct {
	Name  string
	Tools []Tool
}

// Entry is a registered tool with its group and pre-resolved schema.
type Entry struct {
	Tool
	Group    string
	Resolved *jsonschema.Resolved
}

type Registry struct {
	order   []string
	entries map[string]*Entry
	groups  []string
}

// New builds the registry from the enabled subset of groups. Unknown group
// names and tool name collisions are configuration errors: the process must
// not start with either.
func New(groups []Group, enabled []string) (*Registry, error) {
	byName := make(map[string]Group, len(groups))
	for _, g := range groups {
		byName[g.Name] = g
	}

	r := &Registry{
		entries: make(map[string]*Entry),
	}

	for _, name := range enabled {
		group, ok := byName[name]
		if !ok {
			return nil, domain.Errorf(domain.CodeConfiguration, "registry.new", "unknown tool group %q", name)
		}
		r.groups = append(r.groups, name)

		for _, tool := range group.Tools {
			if tool.Name == "" {
				return nil, domain.Errorf(domain.CodeConfiguration, "registry.new", "group %q has a tool without a name", name)
			}
			if existing, dup := r.entries[tool.Name]; dup {
				return nil, domain.Errorf(domain.CodeConfiguration, "registry.new",
					"tool %q registered by both %q and %q", tool.Name, existing.Group, name)
			}
			if tool.Handler == nil {
				return nil, domain.Errorf(domain.CodeConfiguration, "registry.new", "tool %q has no handler", tool.Name)
			}

			schema := tool.InputSchema
			if schema == nil {
				schema = &jsonschema.Schema{Type: "object"}
			}
			resolved, err := schema.Resolve(nil)
			if err != nil {
				return nil, domain.E(domain.CodeConfiguration, "registry.new", "invalid input schema for tool "+tool.Name, err)
			}

			entry := &Entry{Tool: tool, Group: name, Resolved: resolved}
			entry.InputSchema = schema
			r.entries[tool.Name] = entry
			r.order = append(r.order, tool.Name)
		}
	}

	return r, nil
}

// List returns the enabled tool descriptors in registration order. The
// order is stable for the life of the process.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].Descriptor)
	}
	return out
}

func (r *Registry) Lookup(name string) (*Entry, bool) {
	entry, ok := r.entries[name]
	return entry, ok
}

// Groups returns the enabled group names in configuration order.
func (r *Registry) Groups() []string {
	return append([]string(nil), r.groups...)
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Package tools defines the fixed catalog of Gerrit tools exposed to the
// review agent over the wire protocol.
package tools

import (
	"context"
	"fmt"
)

// Handler executes one tool call against validated arguments and returns the
// text payload for the caller.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Property describes one field of a tool's input schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the JSON Schema subset used to describe tool arguments:
// an object with typed properties and a required list.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Definition describes one callable tool: its wire name, the description the
// agent sees during discovery, the argument schema, and the handler.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
	Handler     Handler     `json:"-"`
}

// Registry is the static, read-only tool table built once at startup.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// NewRegistry builds a registry from tool definitions, preserving catalog
// order for discovery responses.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{
		defs:  defs,
		index: make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		r.index[def.Name] = i
	}
	return r
}

// List returns the full catalog in registration order.
func (r *Registry) List() []Definition {
	return r.defs
}

// Call validates required arguments for the named tool and invokes its
// handler. Unknown tools and missing arguments fail before any handler or
// network activity.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	i, ok := r.index[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	def := r.defs[i]

	if args == nil {
		args = map[string]any{}
	}
	for _, field := range def.InputSchema.Required {
		if _, present := args[field]; !present {
			return "", fmt.Errorf("%s: missing required argument %q", name, field)
		}
	}

	return def.Handler(ctx, args)
}

package mcp

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ToolSpec describes a tool to register: its unique name, the description
// shown in discovery, its declared parameters, and the handler that
// performs the work.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
	Handler     HandlerFunc
}

// Tool is a registered tool descriptor. Descriptors are created once at
// registration and never mutated afterwards, so they are safe to read
// concurrently.
type Tool struct {
	Name         string
	Description  string
	Params       []ParamSpec
	Schema       InputSchema
	Handler      HandlerFunc
	EndpointPath string
}

// Registry stores registered tools keyed by unique name. Registration
// normally completes at startup, but the registry is safe for concurrent
// registration and lookup; List and Get never observe a half-inserted
// descriptor.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register validates the spec, derives its input schema, and stores the
// tool. A duplicate name fails with ErrDuplicateTool and leaves the
// existing registration intact. Schema errors propagate unchanged.
func (r *Registry) Register(spec ToolSpec) (*Tool, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, &DefinitionError{Reason: "tool name must not be empty"}
	}
	if spec.Handler == nil {
		return nil, &DefinitionError{Tool: spec.Name, Reason: "handler must not be nil"}
	}

	schema, err := BuildInputSchema(spec.Params)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) && de.Tool == "" {
			de.Tool = spec.Name
		}
		return nil, err
	}

	params := make([]ParamSpec, len(spec.Params))
	copy(params, spec.Params)

	tool := &Tool{
		Name:         spec.Name,
		Description:  spec.Description,
		Params:       params,
		Schema:       schema,
		Handler:      spec.Handler,
		EndpointPath: "/tools/" + spec.Name,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[spec.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, spec.Name)
	}
	r.tools[spec.Name] = tool
	r.order = append(r.order, spec.Name)

	return tool, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns a snapshot of all registered tools in registration order.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

package mcp

import "fmt"

// Parameter type tokens accepted in a ParamSpec.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeAny     = "any"
)

var knownTypes = map[string]bool{
	TypeString: true, TypeInteger: true, TypeNumber: true,
	TypeBoolean: true, TypeArray: true, TypeObject: true, TypeAny: true,
}

// ParamSpec declares one parameter of a tool's input schema. An empty Type
// means "any". A parameter with a non-nil Default is always optional.
// Variadic parameters are not supported and fail registration.
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any
	Variadic    bool
}

// PropertySchema describes a single property of an input schema.
type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// InputSchema is the structural description of a tool's JSON payload.
// Cosmetic metadata (titles, nested definition tables) is deliberately
// omitted to keep the discovery payload compact for remote clients.
type InputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// BuildInputSchema derives a tool's input schema from its declared
// parameters. Pure function of the parameter list; validation failures are
// DefinitionErrors raised before the tool is ever dispatched to.
func BuildInputSchema(params []ParamSpec) (InputSchema, error) {
	schema := InputSchema{
		Type:       "object",
		Properties: make(map[string]PropertySchema, len(params)),
		Required:   make([]string, 0, len(params)),
	}

	for _, p := range params {
		if p.Variadic {
			return InputSchema{}, &DefinitionError{Reason: "variadic parameters are not supported"}
		}
		if p.Name == "" {
			return InputSchema{}, &DefinitionError{Reason: "parameter name must not be empty"}
		}
		if _, exists := schema.Properties[p.Name]; exists {
			return InputSchema{}, &DefinitionError{Reason: fmt.Sprintf("duplicate parameter %q", p.Name)}
		}

		typ := p.Type
		if typ == "" {
			typ = TypeAny
		}
		if !knownTypes[typ] {
			return InputSchema{}, &DefinitionError{Reason: fmt.Sprintf("parameter %q has unknown type %q", p.Name, p.Type)}
		}

		schema.Properties[p.Name] = PropertySchema{
			Type:        typ,
			Description: p.Description,
			Default:     p.Default,
		}

		// A declared default always makes the parameter optional.
		if p.Required && p.Default == nil {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return schema, nil
}

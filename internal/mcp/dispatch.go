package mcp

import (
	"context"
	"fmt"
	"math"

	"github.com/bobmcallan/procura/internal/common"
)

// Args holds the decoded payload fields passed to a tool handler. Optional
// fields absent from the request are absent from the map (never injected as
// null), so handlers apply their own defaults via the typed getters. An
// explicit JSON null is present with a nil value.
type Args map[string]any

// Has reports whether the caller supplied a value for name.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// GetString returns the string value for name, or def when absent or not a string.
func (a Args) GetString(name, def string) string {
	if v, ok := a[name].(string); ok {
		return v
	}
	return def
}

// GetInt returns the integer value for name, or def when absent.
// JSON numbers decode as float64 and are truncated.
func (a Args) GetInt(name string, def int) int {
	if v, ok := a[name].(float64); ok {
		return int(v)
	}
	return def
}

// GetFloat returns the numeric value for name, or def when absent.
func (a Args) GetFloat(name string, def float64) float64 {
	if v, ok := a[name].(float64); ok {
		return v
	}
	return def
}

// GetBool returns the boolean value for name, or def when absent.
func (a Args) GetBool(name string, def bool) bool {
	if v, ok := a[name].(bool); ok {
		return v
	}
	return def
}

// HandlerFunc implements a tool's behavior. It runs in the goroutine of the
// HTTP request that invoked it and should honor ctx cancellation during its
// own I/O. A returned *ToolError propagates to the caller unchanged.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// Dispatcher validates request payloads against registered tool schemas and
// invokes handlers. With strict set, unknown payload fields are rejected
// instead of ignored.
type Dispatcher struct {
	registry *Registry
	strict   bool
	logger   *common.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, strict bool, logger *common.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		strict:   strict,
		logger:   logger,
	}
}

// Invoke looks up the named tool, validates the payload against its schema,
// and runs the handler. The returned value is the handler's result passed
// through untouched; the dispatcher does not shape response envelopes.
func (d *Dispatcher) Invoke(ctx context.Context, name string, payload map[string]any) (any, error) {
	tool, ok := d.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	args, err := d.bind(tool, payload)
	if err != nil {
		return nil, err
	}

	return tool.Handler(ctx, args)
}

// bind filters the payload down to the tool's declared parameters. Missing
// required fields and (in strict mode) unknown fields fail validation;
// present fields are type-checked unless explicitly null.
func (d *Dispatcher) bind(tool *Tool, payload map[string]any) (Args, error) {
	for _, name := range tool.Schema.Required {
		if _, ok := payload[name]; !ok {
			return nil, &ValidationError{Field: name, Reason: "required parameter is missing"}
		}
	}

	args := make(Args, len(payload))
	for name, value := range payload {
		prop, ok := tool.Schema.Properties[name]
		if !ok {
			if d.strict {
				return nil, &ValidationError{Field: name, Reason: "unknown parameter"}
			}
			d.logger.Debug().Str("tool", tool.Name).Str("parameter", name).Msg("ignoring unknown payload field")
			continue
		}
		if value != nil {
			if err := checkType(prop.Type, value); err != nil {
				return nil, &ValidationError{Field: name, Reason: err.Error(), Binding: true}
			}
		}
		args[name] = value
	}

	return args, nil
}

// checkType verifies a decoded JSON value matches the declared type token.
func checkType(typ string, v any) error {
	switch typ {
	case TypeAny, "":
		return nil
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %s", jsonTypeOf(v))
		}
	case TypeInteger:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected integer, got %s", jsonTypeOf(v))
		}
		if f != math.Trunc(f) {
			return fmt.Errorf("expected integer, got fractional number")
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("expected number, got %s", jsonTypeOf(v))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %s", jsonTypeOf(v))
		}
	case TypeArray:
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("expected array, got %s", jsonTypeOf(v))
		}
	case TypeObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %s", jsonTypeOf(v))
		}
	}
	return nil
}

// jsonTypeOf names the JSON type of a decoded value for error messages.
func jsonTypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

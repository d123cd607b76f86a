package mcp

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for registry and dispatch failures.
var (
	// ErrDuplicateTool is returned when registering a name that already exists.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrToolNotFound is returned when dispatching to an unknown tool name.
	ErrToolNotFound = errors.New("tool not found")
)

// DefinitionError reports an invalid tool or parameter definition. It is
// raised at registration time only, never during dispatch, and aborts just
// the one registration.
type DefinitionError struct {
	Tool   string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("invalid tool definition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid definition for tool %q: %s", e.Tool, e.Reason)
}

// ValidationError reports a payload that does not satisfy a tool's input
// schema. Binding marks type/binding failures, which surface as 400 rather
// than the 422 used for missing required fields.
type ValidationError struct {
	Field   string
	Reason  string
	Binding bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("parameter %q: %s", e.Field, e.Reason)
}

// ToolError is a structured error raised by a tool handler itself, carrying
// the HTTP status and detail message to surface to the caller unchanged.
// The dispatcher never reclassifies it.
type ToolError struct {
	Status int
	Detail string
}

func (e *ToolError) Error() string { return e.Detail }

// Errorf builds a ToolError with a formatted detail message.
func Errorf(status int, format string, args ...any) *ToolError {
	return &ToolError{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// StatusFor maps a dispatch error to the HTTP status it should surface as.
// Unrecognized errors map to 500; their detail is logged, not echoed.
func StatusFor(err error) int {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Status
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Binding {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrToolNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

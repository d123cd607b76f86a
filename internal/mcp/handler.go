package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/procura/internal/common"
)

// DefaultBasePath is the URL prefix for tool routes when none is configured.
const DefaultBasePath = "/mcp"

// Handler serves the tool discovery and invocation endpoints under a
// configurable base path:
//
//	GET  {prefix}/tools        — discovery payload for all registered tools
//	POST {prefix}/tools/{name} — validate payload and invoke the tool
type Handler struct {
	basePath   string
	registry   *Registry
	dispatcher *Dispatcher
	logger     *common.Logger
}

// NewHandler creates a transport handler over the registry and dispatcher.
// An empty basePath defaults to "/mcp"; trailing slashes are stripped.
func NewHandler(basePath string, registry *Registry, dispatcher *Dispatcher, logger *common.Logger) *Handler {
	basePath = strings.TrimRight(basePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Handler{
		basePath:   basePath,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// BasePath returns the URL prefix the handler's routes are mounted under.
func (h *Handler) BasePath() string {
	return h.basePath
}

// discoveredTool is one entry of the discovery payload.
type discoveredTool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
	Endpoint    string      `json:"endpoint"`
}

// HandleDiscovery handles GET {prefix}/tools.
func (h *Handler) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tools := h.registry.List()
	entries := make([]discoveredTool, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, discoveredTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema,
			Endpoint:    h.basePath + t.EndpointPath,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"tools": entries})
}

// HandleInvoke handles POST {prefix}/tools/{name}. The response body is the
// handler's return value serialized as JSON; failures carry a
// {"detail": ...} body with the mapped status.
func (h *Handler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, h.basePath+"/tools/")
	if name == "" || strings.Contains(name, "/") {
		writeDetail(w, http.StatusNotFound, "tool not found")
		return
	}

	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := decodePayload(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := h.dispatcher.Invoke(r.Context(), name, payload)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		status := StatusFor(err)
		detail := err.Error()
		if status == http.StatusInternalServerError && !isToolError(err) {
			// Unanticipated failure: log the cause, return a generic detail.
			h.logger.Error().
				Str("tool", name).
				Int64("duration_ms", durationMs).
				Str("error", err.Error()).
				Msg("tool invocation failed")
			detail = "internal server error"
		} else {
			h.logger.Warn().
				Str("tool", name).
				Int("status", status).
				Int64("duration_ms", durationMs).
				Str("error", err.Error()).
				Msg("tool invocation rejected")
		}
		writeDetail(w, status, detail)
		return
	}

	h.logger.Debug().Str("tool", name).Int64("duration_ms", durationMs).Msg("tool invocation complete")
	writeJSON(w, http.StatusOK, result)
}

// decodePayload decodes the request body into a payload mapping. An empty
// body is treated as an empty object so validation of required fields still
// applies.
func decodePayload(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// isToolError reports whether err carries a handler-raised status.
func isToolError(err error) bool {
	var te *ToolError
	return errors.As(err, &te)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeDetail writes the error response shape used by tool routes.
func writeDetail(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, map[string]string{"detail": detail})
}

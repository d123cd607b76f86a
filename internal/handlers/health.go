package handlers

import (
	"net/http"

	"github.com/bobmcallan/procura/internal/common"
)

// RootHandler serves the root health probe used by deployment platforms to
// confirm the gateway and its MCP surface are up.
type RootHandler struct {
	logger *common.Logger
}

// NewRootHandler creates a new root handler.
func NewRootHandler(logger *common.Logger) *RootHandler {
	return &RootHandler{logger: logger}
}

// ServeHTTP handles GET /. Any other path falling through to the root
// pattern gets a JSON 404.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mcp":    "available",
	})
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *common.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

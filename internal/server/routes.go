package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	base := s.app.MCPHandler.BasePath()

	// Health probe (also catches unmatched paths with a JSON 404)
	mux.HandleFunc("/", s.app.RootHandler.ServeHTTP)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.Bridge != nil {
		mux.Handle(base, s.app.Bridge)
	}

	// Tool discovery and invocation (plain JSON over HTTP)
	mux.HandleFunc(base+"/tools", s.app.MCPHandler.HandleDiscovery)
	mux.HandleFunc(base+"/tools/", s.app.MCPHandler.HandleInvoke)

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}

package server

import (
	"net/http"

	"github.com/bobmcallan/krx-alert-portal/internal/proxy"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI page routes (HTML templates)
	mux.HandleFunc("/", s.app.PageHandler.ServePage("index.html", "home", "/"))
	mux.Handle("/analyze", s.app.AnalyzeHandler)

	// Static files (CSS, JS, images)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Portal endpoints
	mux.Handle("/portal/health", s.app.HealthHandler)
	mux.Handle("/portal/version", s.app.VersionHandler)
	mux.Handle("/portal/server-health", s.app.ServerHealthHandler)
	mux.HandleFunc("/portal/", s.handleNotFound)

	// Backend paths belong to the analysis service. In dev mode they are
	// forwarded to it; otherwise a reverse proxy in front of the portal owns them.
	if s.app.DevProxy != nil {
		mux.Handle(proxy.APIPrefix, s.app.DevProxy)
		mux.Handle(proxy.HealthPath, s.app.DevProxy)
		mux.Handle(proxy.HealthPath+"/", s.app.DevProxy)
	} else {
		mux.HandleFunc(proxy.APIPrefix, s.handleNotFound)
	}

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}

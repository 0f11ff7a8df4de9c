// Package mcp exposes the stock analysis as MCP tools over streamable HTTP.
package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	mcpServer  *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler registers analyze_stock and get_version. apiBase is the backend
// prefix the version tool probes.
func NewHandler(a Analyzer, apiBase string, logger *common.Logger) *Handler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	mcpSrv := mcpserver.NewMCPServer(
		"krx-alert-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	mcpSrv.AddTool(AnalyzeTool(), AnalyzeToolHandler(a, logger))
	mcpSrv.AddTool(VersionTool(), VersionToolHandler(apiBase))

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", 2).
		Str("api_url", apiBase).
		Msg("MCP handler initialized")

	return &Handler{
		mcpServer:  mcpSrv,
		streamable: streamable,
		logger:     logger,
	}
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.mcpServer
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}

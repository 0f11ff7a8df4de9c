package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/krx-alert-portal/internal/config"
)

// backendProbeTimeout bounds the backend health check in get_version.
const backendProbeTimeout = 3 * time.Second

// versionInfo is the get_version payload.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
	Backend string `json:"backend"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the portal version and whether the analysis backend is reachable."),
	)
}

// VersionToolHandler returns a handler reporting the portal version and the
// health of the backend at apiBase.
func VersionToolHandler(apiBase string) server.ToolHandlerFunc {
	healthURL := strings.TrimRight(apiBase, "/") + "/health"
	probe := resty.New().SetTimeout(backendProbeTimeout)

	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version: config.GetVersion(),
			Build:   config.GetBuild(),
			Commit:  config.GetGitCommit(),
			Backend: "down",
		}

		resp, err := probe.R().SetContext(ctx).Get(healthURL)
		if err == nil && resp.StatusCode() == http.StatusOK {
			info.Backend = "ok"
		}

		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}

package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/models"
	"github.com/bobmcallan/krx-alert-portal/internal/render"
)

// Analyzer runs one backend query.
type Analyzer interface {
	Analyze(ctx context.Context, code, date string) (*models.Report, error)
}

// Output formats for analyze_stock.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// AnalyzeTool returns the mcp.Tool definition for analyze_stock.
func AnalyzeTool() mcp.Tool {
	return mcp.NewTool("analyze_stock",
		mcp.WithDescription("Check a KRX stock against the investment caution, investment warning and short-term overheating designation rules."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Stock code, e.g. 005930"),
		),
		mcp.WithString("date",
			mcp.Description("Reference date (YYYY-MM-DD). Defaults to the latest trading day."),
		),
		mcp.WithString("format",
			mcp.Description("Output format: markdown (default) or json"),
			mcp.Enum(FormatMarkdown, FormatJSON),
		),
	)
}

// AnalyzeToolHandler returns a handler running analyze_stock against a.
func AnalyzeToolHandler(a Analyzer, logger *common.Logger) server.ToolHandlerFunc {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code := r.GetString("code", "")
		date := r.GetString("date", "")
		format := r.GetString("format", FormatMarkdown)

		report, err := a.Analyze(ctx, code, date)
		if err != nil {
			logger.Warn().Str("tool", "analyze_stock").Str("code", code).Str("error", err.Error()).Msg("tool call failed")
			return errorResult(err.Error()), nil
		}

		if format == FormatJSON {
			out, err := json.Marshal(report)
			if err != nil {
				return errorResult("failed to marshal report"), nil
			}
			return textResult(string(out)), nil
		}
		return textResult(render.Markdown(report)), nil
	}
}

package main

import (
	"flag"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/krx-alert-portal/internal/client"
	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
	"github.com/bobmcallan/krx-alert-portal/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	apiBase := flag.String("api", "", "Backend prefix for /api/stock (overrides config)")
	flag.Parse()

	config.LoadVersionFromFile()

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	base := resolveAPIBase(cfg, *apiBase)

	// stdout carries the protocol; keep logs off the console.
	logCfg := cfg.Logging
	logCfg.Outputs = []string{"file"}
	if logCfg.FilePath == "" || logCfg.FilePath == config.NewDefaultConfig().Logging.FilePath {
		logCfg.FilePath = "logs/krx-alert-mcp.log"
	}
	logger := common.NewLoggerFromConfig(logCfg)

	alerts := client.NewAlertClient(base, cfg.Client.Timeout.Duration, logger)
	handler := mcp.NewHandler(alerts, base, logger)

	if err := mcpserver.ServeStdio(handler.Server()); err != nil {
		fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
		os.Exit(1)
	}
}

// resolveAPIBase prefers the flag, then base_url, then the backend itself.
// There is no portal origin to fall back on when running over stdio.
func resolveAPIBase(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.API.BaseURL != "" {
		return cfg.API.BaseURL
	}
	return cfg.API.BackendURL
}

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/krx-alert-portal/internal/client"
	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
	"github.com/bobmcallan/krx-alert-portal/internal/handlers"
	"github.com/bobmcallan/krx-alert-portal/internal/mcp"
	"github.com/bobmcallan/krx-alert-portal/internal/proxy"
	"github.com/bobmcallan/krx-alert-portal/internal/view"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Client   *client.AlertClient
	Sessions *view.Store

	// HTTP handlers
	PageHandler         *handlers.PageHandler
	AnalyzeHandler      *handlers.AnalyzeHandler
	HealthHandler       *handlers.HealthHandler
	VersionHandler      *handlers.VersionHandler
	ServerHealthHandler *handlers.ServerHealthHandler
	MCPHandler          *mcp.Handler

	// DevProxy is nil outside dev mode.
	DevProxy *proxy.DevProxy

	cancel context.CancelFunc
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().
			Str("backend_url", cfg.API.BackendURL).
			Msg("RUNNING IN DEV MODE: /api and /health are proxied to the local backend")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if cfg.IsDevMode() {
		p, err := proxy.New(cfg.API.BackendURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create dev proxy: %w", err)
		}
		a.DevProxy = p
	}

	a.initHandlers()

	logger.Info().
		Str("api_base", cfg.APIBase()).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	apiBase := a.Config.APIBase()
	a.Client = client.NewAlertClient(apiBase, a.Config.Client.Timeout.Duration, a.Logger)
	a.Sessions = view.NewStore(a.Config.Session.TTL.Duration)

	a.PageHandler = handlers.NewPageHandler(a.Logger, a.Sessions, a.Config.IsDevMode())
	a.AnalyzeHandler = handlers.NewAnalyzeHandler(ctx, a.Logger, a.Sessions, a.Client)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ServerHealthHandler = handlers.NewServerHealthHandler(a.Logger, apiBase)
	a.MCPHandler = mcp.NewHandler(a.Client, apiBase, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close abandons queries still in flight and waits for them to settle.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.AnalyzeHandler != nil {
		a.AnalyzeHandler.Wait()
	}
	return nil
}

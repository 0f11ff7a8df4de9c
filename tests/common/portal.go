package common

import (
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/krx-alert-portal/internal/app"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
	"github.com/bobmcallan/krx-alert-portal/internal/server"
)

// StartPortal runs the portal in-process in dev mode, proxying /api and
// /health to backendURL, and returns its base URL.
func StartPortal(t *testing.T, backendURL string) string {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Environment = "dev"
	cfg.API.BackendURL = backendURL

	ts := httptest.NewUnstartedServer(nil)
	// Queries go back through the portal's own origin, so the listener
	// address must be known before the app is built.
	cfg.API.BaseURL = "http://" + ts.Listener.Addr().String()

	application, err := app.New(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create portal: %v", err)
	}
	ts.Config.Handler = server.New(application).Handler()
	ts.Start()

	t.Cleanup(func() {
		ts.Close()
		application.Close()
	})
	return ts.URL
}

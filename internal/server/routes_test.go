package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/krx-alert-portal/internal/app"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
)

func newTestApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()

	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	application, err := app.New(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}

	t.Cleanup(func() {
		application.Close()
	})

	return application
}

func serve(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestRoutes_HealthEndpoint(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/portal/health")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestRoutes_VersionEndpoint(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/portal/version")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["version"] != config.GetVersion() {
		t.Errorf("expected version %s, got %s", config.GetVersion(), body["version"])
	}
}

func TestRoutes_PortalNotFound(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/portal/nonexistent")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Errorf("expected JSON 404, got %s", w.Header().Get("Content-Type"))
	}
}

func TestRoutes_APINotFoundOutsideDevMode(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/api/stock/005930")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRoutes_DevModeProxiesBackend(t *testing.T) {
	var paths []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	cfg := config.NewDefaultConfig()
	cfg.Environment = "dev"
	cfg.API.BackendURL = backend.URL
	srv := New(newTestApp(t, cfg))

	if w := serve(srv, "GET", "/api/stock/005930?date=2026-10-14"); w.Code != http.StatusOK {
		t.Errorf("expected proxied 200, got %d", w.Code)
	}
	if w := serve(srv, "GET", "/health"); w.Code != http.StatusOK {
		t.Errorf("expected proxied 200 for /health, got %d", w.Code)
	}

	want := []string{"/api/stock/005930?date=2026-10-14", "/health"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d backend calls, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], paths[i])
		}
	}
}

func TestRoutes_IndexPage(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected text/html, got %s", w.Header().Get("Content-Type"))
	}
	body := w.Body.String()
	if !strings.Contains(body, "주식 지정 요건 분석") {
		t.Error("expected page title in body")
	}
	if !strings.Contains(body, `method="post" action="/analyze"`) {
		t.Error("expected analyze form in body")
	}
}

func TestRoutes_AnalyzeRedirects(t *testing.T) {
	srv := New(newTestApp(t, nil))

	req := httptest.NewRequest("POST", "/analyze", strings.NewReader("code="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("expected status 303, got %d", w.Code)
	}
	if w.Header().Get("Location") != "/" {
		t.Errorf("expected redirect to /, got %s", w.Header().Get("Location"))
	}
}

func TestRoutes_StaticCSS(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/static/portal.css")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestRoutes_MiddlewareApplied(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/portal/health")

	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected X-Correlation-ID header from middleware")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header from middleware")
	}
}

func TestRoutes_SecurityHeadersApplied(t *testing.T) {
	srv := New(newTestApp(t, nil))

	w := serve(srv, "GET", "/")

	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options=DENY")
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header")
	}
}

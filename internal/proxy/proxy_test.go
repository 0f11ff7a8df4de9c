package proxy

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDevProxy_ForwardsAPIPathAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	p, err := New(backend.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/stock/005930?date=2026-10-14", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotPath != "/api/stock/005930" {
		t.Errorf("expected path /api/stock/005930, got %s", gotPath)
	}
	if gotQuery != "date=2026-10-14" {
		t.Errorf("expected query date=2026-10-14, got %s", gotQuery)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("expected backend body, got %s", w.Body.String())
	}
}

func TestDevProxy_ForwardsHealth(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	p, err := New(backend.URL+"/", nil)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK || gotPath != "/health" {
		t.Errorf("expected /health forwarded, got code=%d path=%s", w.Code, gotPath)
	}
}

func TestDevProxy_RejectsOtherPaths(t *testing.T) {
	called := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer backend.Close()

	p, _ := New(backend.URL, nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if called {
		t.Error("backend must not be called for unrelated paths")
	}
}

func TestDevProxy_UpstreamDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := backend.URL
	backend.Close()

	p, err := New(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "/api/stock/005930", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:20000", "://bad"} {
		if _, err := New(u, nil); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/stock/005930", true},
		{"/api/", true},
		{"/health", true},
		{"/health/live", true},
		{"/healthz", false},
		{"/", false},
		{"/portal/health", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// Package proxy forwards backend paths to a local analysis service while
// developing against the portal's own origin.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
)

// Prefixes the dev proxy forwards.
const (
	APIPrefix  = "/api/"
	HealthPath = "/health"
)

// DevProxy forwards /api/ and /health requests to the backend unchanged.
type DevProxy struct {
	target *url.URL
	rp     *httputil.ReverseProxy
	logger *common.Logger
}

// New creates a dev proxy for backendURL.
func New(backendURL string, logger *common.Logger) (*DevProxy, error) {
	target, err := url.Parse(strings.TrimRight(backendURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", backendURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute: %q", backendURL)
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	p := &DevProxy{target: target, logger: logger}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// Target returns the backend the proxy forwards to.
func (p *DevProxy) Target() string {
	return p.target.String()
}

// Matches reports whether path belongs to the backend.
func Matches(path string) bool {
	return strings.HasPrefix(path, APIPrefix) || path == HealthPath || strings.HasPrefix(path, HealthPath+"/")
}

// ServeHTTP forwards r when its path belongs to the backend and answers 404
// otherwise.
func (p *DevProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !Matches(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	p.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("target", p.target.String()).
		Msg("dev proxy request")
	p.rp.ServeHTTP(w, r)
}

func (p *DevProxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Warn().
		Str("path", r.URL.Path).
		Str("target", p.target.String()).
		Str("error", err.Error()).
		Msg("dev proxy upstream unreachable")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	w.Write([]byte(`{"ok":false,"error":{"message":"backend unreachable"}}`))
}

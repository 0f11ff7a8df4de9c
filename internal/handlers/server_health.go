package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
)

// serverHealthTimeout bounds the backend probe.
const serverHealthTimeout = 3 * time.Second

// ServerHealthHandler probes the analysis backend's /health endpoint.
type ServerHealthHandler struct {
	logger *common.Logger
	apiURL string
	client *resty.Client
}

// NewServerHealthHandler creates a handler probing apiURL + "/health".
func NewServerHealthHandler(logger *common.Logger, apiURL string) *ServerHealthHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &ServerHealthHandler{
		logger: logger,
		apiURL: strings.TrimRight(apiURL, "/"),
		client: resty.New().SetTimeout(serverHealthTimeout),
	}
}

// ServeHTTP handles GET /portal/server-health.
func (h *ServerHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	resp, err := h.client.R().SetContext(r.Context()).Get(h.apiURL + "/health")
	if err != nil {
		h.logger.ForRequest(r.Context()).Debug().
			Str("api_url", h.apiURL).
			Str("error", err.Error()).
			Msg("backend health probe failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}

	if resp.StatusCode() == http.StatusOK {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
}

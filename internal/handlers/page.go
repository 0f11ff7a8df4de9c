package handlers

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/config"
	"github.com/bobmcallan/krx-alert-portal/internal/render"
	"github.com/bobmcallan/krx-alert-portal/internal/view"
)

// loadingRefreshSeconds is how often a loading page reloads itself.
const loadingRefreshSeconds = 1

// PageHandler serves HTML pages rendered with Go templates.
type PageHandler struct {
	logger    *common.Logger
	templates *template.Template
	store     *view.Store
	devMode   bool
}

// PageData is what the page templates render.
type PageData struct {
	Page    string
	DevMode bool
	Version string

	Code      string
	Date      string
	Loading   bool
	CanSubmit bool
	Error     string
	APIHint   string
	Card      *render.Card

	// RefreshSeconds is non-zero while a query is in flight.
	RefreshSeconds int
}

// NewPageHandler creates a new page handler that loads templates from the pages directory.
func NewPageHandler(logger *common.Logger, store *view.Store, devMode bool) *PageHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	pagesDir := FindPagesDir()

	templates := template.Must(template.ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))

	return &PageHandler{
		logger:    logger,
		templates: templates,
		store:     store,
		devMode:   devMode,
	}
}

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// ServePage creates a handler function for serving a specific page template
// filled with the caller's session state. Only the exact path is served.
func (h *PageHandler) ServePage(templateName, pageName, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}

		state := acquireSession(w, r, h.store)
		data := h.pageData(pageName, state.Snapshot())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := h.templates.ExecuteTemplate(w, templateName, data); err != nil {
			h.logger.ForRequest(r.Context()).Error().
				Str("template", templateName).
				Str("error", err.Error()).
				Msg("failed to render page")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

func (h *PageHandler) pageData(pageName string, snap view.Snapshot) PageData {
	data := PageData{
		Page:      pageName,
		DevMode:   h.devMode,
		Version:   config.GetVersion(),
		Code:      snap.Code,
		Date:      snap.Date,
		Loading:   snap.Loading(),
		CanSubmit: snap.CanSubmit(),
		Error:     snap.Error,
		APIHint:   render.APIHint(snap.Code, snap.Date),
	}
	if data.Loading {
		data.RefreshSeconds = loadingRefreshSeconds
	}
	if snap.Phase == view.PhaseSuccess {
		if card, ok := render.BuildCard(snap.Report); ok {
			data.Card = &card
		}
	}
	return data
}

// StaticFileHandler serves static files (CSS, JS, images).
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	pagesDir := FindPagesDir()
	staticDir := filepath.Join(pagesDir, "static")

	// Remove /static/ prefix from URL path
	path := r.URL.Path[len("/static/"):]
	fullPath := filepath.Join(staticDir, path)

	// Security: prevent directory traversal
	absStaticDir, _ := filepath.Abs(staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if len(absFullPath) < len(absStaticDir) || absFullPath[:len(absStaticDir)] != absStaticDir {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}

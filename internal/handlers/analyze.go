package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/models"
	"github.com/bobmcallan/krx-alert-portal/internal/view"
)

// Analyzer runs one backend query.
type Analyzer interface {
	Analyze(ctx context.Context, code, date string) (*models.Report, error)
}

// AnalyzeHandler starts a query for the caller's session and sends the
// browser back to the page, which shows the loading state until the query
// settles.
type AnalyzeHandler struct {
	logger   *common.Logger
	store    *view.Store
	analyzer Analyzer
	ctx      context.Context
	wg       sync.WaitGroup
}

// NewAnalyzeHandler creates the handler. Queries run under ctx; cancelling it
// abandons whatever is still in flight.
func NewAnalyzeHandler(ctx context.Context, logger *common.Logger, store *view.Store, analyzer Analyzer) *AnalyzeHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &AnalyzeHandler{
		logger:   logger,
		store:    store,
		analyzer: analyzer,
		ctx:      ctx,
	}
}

// ServeHTTP handles POST /analyze with form fields code and date. GET only
// redirects to the page, so a followed link never starts a query.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, http.MethodGet) {
		return
	}
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	logger := h.logger.ForRequest(r.Context())
	state := acquireSession(w, r, h.store)
	code := formParam(r, "code")
	date := formParam(r, "date")

	token, err := state.Begin(code, date)
	switch {
	case err == nil:
		logger.Info().Str("code", code).Str("date", date).Msg("analysis started")
		h.wg.Add(1)
		go h.run(logger, state, token, code, date)
	case errors.Is(err, view.ErrBusy):
		logger.Debug().Str("code", code).Msg("analysis already in flight")
	case errors.Is(err, view.ErrBlankCode):
		logger.Debug().Msg("analysis skipped: blank code")
	default:
		logger.Warn().Str("error", err.Error()).Msg("analysis rejected")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AnalyzeHandler) run(logger *common.Logger, state *view.State, token uint64, code, date string) {
	defer h.wg.Done()

	report, err := h.analyzer.Analyze(h.ctx, code, date)
	if err != nil {
		if h.ctx.Err() != nil {
			state.Abandon(token)
			logger.Info().Str("code", code).Msg("analysis abandoned")
			return
		}
		logger.Warn().Str("code", code).Str("error", err.Error()).Msg("analysis failed")
		if !state.Fail(token, err) {
			logger.Debug().Int64("token", int64(token)).Msg("stale failure discarded")
		}
		return
	}

	if !state.Complete(token, report) {
		logger.Debug().Int64("token", int64(token)).Msg("stale report discarded")
		return
	}
	logger.Info().
		Str("code", code).
		Str("headline", report.Status.Headline().Label).
		Msg("analysis completed")
}

// Wait blocks until every started query has settled.
func (h *AnalyzeHandler) Wait() {
	h.wg.Wait()
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/krx-alert-portal/internal/client"
	"github.com/bobmcallan/krx-alert-portal/internal/models"
	"github.com/bobmcallan/krx-alert-portal/internal/view"
)

const cautionReport = `{
  "ok": true,
  "input": {"code": "005930"},
  "meta": {"as_of": "2026-10-14", "latest_close": 71200, "currency": "KRW", "stock_name": "삼성전자"},
  "status": {"caution": true, "warning": false, "margin": null, "credit": null},
  "results": {
    "overheating": {"triggered": false, "details": "단기과열 요건 미충족"},
    "caution": {"triggered": true, "details": {
      "5일 상승률": {"val": 0.62, "threshold": 0.6, "triggered": true, "target_price": 70100, "at_max": true}
    }},
    "warning": {"triggered": false, "details": {}}
  }
}`

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int
	lastCode string
	lastDate string
	report   *models.Report
	err      error
	release  chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, code, date string) (*models.Report, error) {
	f.mu.Lock()
	f.calls++
	f.lastCode, f.lastDate = code, date
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, &client.TransportError{Err: ctx.Err()}
		}
	}
	return f.report, f.err
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func mustReport(t *testing.T, body string) *models.Report {
	t.Helper()
	var r models.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}
	return &r
}

type testPortal struct {
	page    http.HandlerFunc
	analyze *AnalyzeHandler
	cancel  context.CancelFunc
	cookie  *http.Cookie
}

func newTestPortal(t *testing.T, a Analyzer) *testPortal {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := view.NewStore(30 * time.Minute)
	return &testPortal{
		page:    NewPageHandler(nil, store, false).ServePage("index.html", "home", "/"),
		analyze: NewAnalyzeHandler(ctx, nil, store, a),
		cancel:  cancel,
	}
}

func (p *testPortal) get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	return p.do(t, h, httptest.NewRequest("GET", target, nil))
}

// analyzeForm submits the query form the way the page does.
func (p *testPortal) analyzeForm(t *testing.T, code, date string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"code": {code}}
	if date != "" {
		form.Set("date", date)
	}
	req := httptest.NewRequest("POST", "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(t, p.analyze, req)
}

func (p *testPortal) do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if p.cookie != nil {
		req.AddCookie(p.cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			p.cookie = c
		}
	}
	return w
}

func TestPage_FreshSession(t *testing.T) {
	p := newTestPortal(t, &fakeAnalyzer{})

	w := p.get(t, p.page, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if p.cookie == nil || p.cookie.Value == "" {
		t.Fatal("expected session cookie on first visit")
	}
	if !p.cookie.HttpOnly {
		t.Error("expected HttpOnly session cookie")
	}

	body := w.Body.String()
	for _, want := range []string{
		"주식 지정 요건 분석",
		`value="005930"`,
		"분석하기",
		"/api/stock/005930",
		`method="post" action="/analyze"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "http-equiv=\"refresh\"") {
		t.Error("idle page must not auto refresh")
	}
	if strings.Contains(body, "stockName") {
		t.Error("idle page must not render a card")
	}
}

func TestPage_ReusesSessionCookie(t *testing.T) {
	p := newTestPortal(t, &fakeAnalyzer{})

	p.get(t, p.page, "/")
	first := p.cookie.Value

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(p.cookie)
	w := httptest.NewRecorder()
	p.page.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			t.Errorf("expected no new cookie for a known session, got %s (had %s)", c.Value, first)
		}
	}
}

func TestPage_UnknownPathIs404(t *testing.T) {
	p := newTestPortal(t, &fakeAnalyzer{})

	w := p.get(t, p.page, "/favicon.ico")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAnalyze_SuccessRendersCard(t *testing.T) {
	a := &fakeAnalyzer{report: mustReport(t, cautionReport)}
	p := newTestPortal(t, a)

	p.get(t, p.page, "/")
	w := p.analyzeForm(t, " 005930 ", "2026-10-14")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %s", loc)
	}
	p.analyze.Wait()

	if a.lastCode != "005930" || a.lastDate != "2026-10-14" {
		t.Errorf("expected trimmed inputs, got %q %q", a.lastCode, a.lastDate)
	}

	body := p.get(t, p.page, "/").Body.String()
	for _, want := range []string{
		"삼성전자",
		"headlineBadge warning",
		"투자주의",
		"70,100원",
		"71,200 KRW",
		"단기과열 요건 미충족",
		"지정예상",
		"62%",
		"(최고가)",
		"/api/stock/005930?date=2026-10-14",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("result page missing %q", want)
		}
	}
}

func TestAnalyze_FailureShowsMessage(t *testing.T) {
	a := &fakeAnalyzer{err: &client.FailureError{Status: 404, Message: "종목을 찾을 수 없습니다."}}
	p := newTestPortal(t, a)

	p.get(t, p.page, "/")
	p.analyzeForm(t, "999999", "")
	p.analyze.Wait()

	body := p.get(t, p.page, "/").Body.String()
	if !strings.Contains(body, "종목을 찾을 수 없습니다.") {
		t.Error("expected backend error message on page")
	}
	if strings.Contains(body, "stockName") {
		t.Error("error page must not render a card")
	}
}

func TestAnalyze_LoadingDisablesTriggerAndRejectsSecondQuery(t *testing.T) {
	a := &fakeAnalyzer{report: mustReport(t, cautionReport), release: make(chan struct{})}
	p := newTestPortal(t, a)

	p.get(t, p.page, "/")
	p.analyzeForm(t, "005930", "")

	body := p.get(t, p.page, "/").Body.String()
	for _, want := range []string{"조회 중…", "disabled", `http-equiv="refresh"`} {
		if !strings.Contains(body, want) {
			t.Errorf("loading page missing %q", want)
		}
	}

	p.analyzeForm(t, "000660", "")

	close(a.release)
	p.analyze.Wait()

	if a.Calls() != 1 {
		t.Errorf("expected one backend call while loading, got %d", a.Calls())
	}
	body = p.get(t, p.page, "/").Body.String()
	if !strings.Contains(body, "삼성전자") {
		t.Error("expected first query's result")
	}
}

func TestAnalyze_BlankCodeLeavesStateUnchanged(t *testing.T) {
	a := &fakeAnalyzer{}
	p := newTestPortal(t, a)

	p.get(t, p.page, "/")
	w := p.analyzeForm(t, "  ", "2026-10-14")
	p.analyze.Wait()

	if w.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", w.Code)
	}
	if a.Calls() != 0 {
		t.Errorf("expected no backend call, got %d", a.Calls())
	}
	body := p.get(t, p.page, "/").Body.String()
	if !strings.Contains(body, `value="005930"`) {
		t.Error("expected prefilled code to remain")
	}
	if strings.Contains(body, "2026-10-14") {
		t.Error("expected date to remain unset")
	}
}

func TestAnalyze_CancelledContextAbandonsQuery(t *testing.T) {
	a := &fakeAnalyzer{release: make(chan struct{})}
	p := newTestPortal(t, a)

	p.get(t, p.page, "/")
	p.analyzeForm(t, "005930", "")
	p.cancel()
	p.analyze.Wait()

	body := p.get(t, p.page, "/").Body.String()
	if strings.Contains(body, "조회 중…") {
		t.Error("expected loading to end after cancellation")
	}
	if strings.Contains(body, `class="error"`) {
		t.Error("abandoned query must not surface an error")
	}
}

func TestAnalyze_GetOnlyRedirects(t *testing.T) {
	a := &fakeAnalyzer{report: mustReport(t, cautionReport)}
	p := newTestPortal(t, a)

	p.get(t, p.page, "/")
	w := p.get(t, p.analyze, "/analyze?code=000660")
	p.analyze.Wait()

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %s", loc)
	}
	if a.Calls() != 0 {
		t.Errorf("expected a GET to start no query, got %d calls", a.Calls())
	}
	body := p.get(t, p.page, "/").Body.String()
	if strings.Contains(body, "000660") {
		t.Error("expected query string to leave the session untouched")
	}
}

func TestAnalyze_RejectsOtherMethods(t *testing.T) {
	p := newTestPortal(t, &fakeAnalyzer{})

	req := httptest.NewRequest("PUT", "/analyze", nil)
	w := httptest.NewRecorder()
	p.analyze.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
	if w.Header().Get("Allow") != "POST, GET" {
		t.Errorf("expected Allow: POST, GET, got %q", w.Header().Get("Allow"))
	}
}

func TestStaticFileHandler(t *testing.T) {
	h := NewPageHandler(nil, view.NewStore(time.Minute), false)

	w := httptest.NewRecorder()
	h.StaticFileHandler(w, httptest.NewRequest("GET", "/static/portal.css", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for portal.css, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.StaticFileHandler(w, httptest.NewRequest("GET", "/static/../index.html", nil))
	if w.Code == http.StatusOK && strings.Contains(w.Body.String(), "<html") {
		t.Error("expected traversal outside static dir to be refused")
	}
}

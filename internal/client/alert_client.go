package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bobmcallan/krx-alert-portal/internal/common"
	"github.com/bobmcallan/krx-alert-portal/internal/models"
)

// snippetLength caps how much of an unparsable body is echoed back.
const snippetLength = 300

// ErrBlankCode is returned when the stock code is empty after trimming.
var ErrBlankCode = errors.New("종목코드를 입력해주세요.")

// EmptyResponseError means the backend answered with no body at all.
type EmptyResponseError struct {
	URL    string
	Status int
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("응답이 비어있습니다. (HTTP %d) URL: %s", e.Status, e.URL)
}

// ParseError means the body was not a JSON report.
type ParseError struct {
	Status      int
	ContentType string
	Snippet     string
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON 파싱 실패 (HTTP %d). content-type=%s\n%s", e.Status, e.ContentType, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FailureError means the status was not 2xx or the report had ok == false.
type FailureError struct {
	Status  int
	Message string
}

func (e *FailureError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("요청 실패 (HTTP %d)", e.Status)
}

// TransportError wraps network-level failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return "네트워크 오류"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// AlertClient queries the analysis backend for stock alert reports.
type AlertClient struct {
	baseURL string
	http    *resty.Client
	logger  *common.Logger
}

// NewAlertClient creates a client for the backend at baseURL. A zero timeout
// leaves requests unbounded apart from the caller's context.
func NewAlertClient(baseURL string, timeout time.Duration, logger *common.Logger) *AlertClient {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	rc := resty.New().
		SetLogger(restyLogger{logger}).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}

	return &AlertClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
		logger:  logger,
	}
}

// BaseURL returns the configured backend prefix.
func (c *AlertClient) BaseURL() string {
	return c.baseURL
}

// StockURL builds {base}/api/stock/{code}[?date=...] with both parts escaped.
func (c *AlertClient) StockURL(code, date string) string {
	return c.baseURL + StockPath(code, date)
}

// StockPath is the same-origin form of StockURL.
func StockPath(code, date string) string {
	p := "/api/stock/" + url.PathEscape(code)
	if date != "" {
		p += "?" + url.Values{"date": {date}}.Encode()
	}
	return p
}

// Analyze fetches the report for code, optionally as of date.
//
// The body is read as text first. An empty body fails regardless of status,
// then JSON is parsed, then status and the report's ok flag are checked.
func (c *AlertClient) Analyze(ctx context.Context, code, date string) (*models.Report, error) {
	code = strings.TrimSpace(code)
	date = strings.TrimSpace(date)
	if code == "" {
		return nil, ErrBlankCode
	}

	reqURL := c.StockURL(code, date)
	c.logger.Debug().Str("url", reqURL).Msg("backend request")

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(reqURL)
	duration := time.Since(start)
	if err != nil {
		c.logger.Warn().Str("url", reqURL).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("backend request failed")
		return nil, &TransportError{Err: err}
	}

	status := resp.StatusCode()
	body := resp.Body()
	c.logger.Debug().Int("status", status).Int("bytes", len(body)).Int64("duration_ms", duration.Milliseconds()).Msg("backend response")

	if len(body) == 0 {
		return nil, &EmptyResponseError{URL: reqURL, Status: status}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{
			Status:      status,
			ContentType: resp.Header().Get("Content-Type"),
			Snippet:     snippet(string(body), snippetLength),
			Err:         err,
		}
	}

	env := decodeEnvelope(body)
	if !resp.IsSuccess() || !env.ok {
		return nil, &FailureError{Status: status, Message: env.message}
	}

	var report models.Report
	if err := json.Unmarshal(body, &report); err != nil {
		c.logger.Warn().Int("status", status).Str("error", err.Error()).Msg("backend report has unexpected shape")
		return nil, &FailureError{Status: status}
	}

	return &report, nil
}

// envelope is the part of a response read before the report is trusted.
type envelope struct {
	ok      bool
	message string
}

// decodeEnvelope reads ok and error.message from any JSON value. Fields of
// the wrong type count as absent.
func decodeEnvelope(body []byte) envelope {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return envelope{}
	}

	var env envelope
	_ = json.Unmarshal(fields["ok"], &env.ok)

	var errFields map[string]json.RawMessage
	if err := json.Unmarshal(fields["error"], &errFields); err == nil {
		_ = json.Unmarshal(errFields["message"], &env.message)
	}
	return env
}

// snippet returns the first n characters of s.
func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// restyLogger routes resty's internal messages to the portal logger.
type restyLogger struct {
	l *common.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

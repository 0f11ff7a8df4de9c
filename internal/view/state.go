// Package view owns the per-session state behind the analysis page.
package view

import (
	"errors"
	"strings"
	"sync"

	"github.com/bobmcallan/krx-alert-portal/internal/models"
)

// Phase is where a session sits in the query lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseIdle
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy rejects a query while another one is outstanding.
	ErrBusy = errors.New("view: a request is already in flight")
	// ErrBlankCode rejects a query without a stock code.
	ErrBlankCode = errors.New("view: stock code is blank")
	// ErrNotStarted rejects a query before Start.
	ErrNotStarted = errors.New("view: state not started")
)

// DefaultCode prefills the form on a fresh session.
const DefaultCode = "005930"

// State is one session's form fields, phase, result and error.
//
// Transitions: NotStarted -> Idle (Start) -> Loading (Begin) -> Success |
// Error (Complete / Fail). Success and Error go back to Loading on the next
// Begin. Loading -> Loading is rejected.
type State struct {
	mu     sync.Mutex
	phase  Phase
	code   string
	date   string
	report *models.Report
	errMsg string
	token  uint64
}

// New returns a state that has not started yet.
func New() *State {
	return &State{}
}

// Snapshot is an immutable copy of State for rendering.
type Snapshot struct {
	Phase  Phase
	Code   string
	Date   string
	Report *models.Report
	Error  string
}

// Loading reports whether the trigger should be disabled.
func (s Snapshot) Loading() bool { return s.Phase == PhaseLoading }

// CanSubmit reports whether the trigger is enabled.
func (s Snapshot) CanSubmit() bool {
	return s.Phase != PhaseLoading && strings.TrimSpace(s.Code) != ""
}

// Start moves a fresh state to Idle with the default code prefilled.
// Calling Start on a started state is a no-op.
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseNotStarted {
		return
	}
	s.phase = PhaseIdle
	s.code = DefaultCode
}

// SetInput updates the form fields without running a query.
func (s *State) SetInput(code, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.code = code
	s.date = date
}

// Begin records the form fields, clears the previous outcome and moves to
// Loading. The returned token identifies this request; only the latest token
// may complete.
func (s *State) Begin(code, date string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseNotStarted:
		return 0, ErrNotStarted
	case PhaseLoading:
		return 0, ErrBusy
	}

	if strings.TrimSpace(code) == "" {
		return 0, ErrBlankCode
	}

	s.code = code
	s.date = date
	s.token++
	s.phase = PhaseLoading
	s.report = nil
	s.errMsg = ""
	return s.token, nil
}

// Complete stores the report for token. Stale tokens are discarded and
// Complete returns false.
func (s *State) Complete(token uint64, report *models.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLoading || token != s.token {
		return false
	}
	s.phase = PhaseSuccess
	s.report = report
	s.errMsg = ""
	return true
}

// Fail stores err's message for token. Stale tokens are discarded and Fail
// returns false.
func (s *State) Fail(token uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLoading || token != s.token {
		return false
	}
	s.phase = PhaseError
	s.report = nil
	s.errMsg = err.Error()
	return true
}

// Abandon returns a Loading state to Idle without an outcome, for requests
// the session gave up on. Stale tokens are ignored.
func (s *State) Abandon(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLoading || token != s.token {
		return false
	}
	s.phase = PhaseIdle
	return true
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Phase:  s.phase,
		Code:   s.code,
		Date:   s.date,
		Report: s.report,
		Error:  s.errMsg,
	}
}

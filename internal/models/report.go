// Package models holds the wire shape of the backend's stock alert report.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Report is the envelope returned by GET /api/stock/{code}.
type Report struct {
	OK      bool         `json:"ok"`
	Error   *ReportError `json:"error,omitempty"`
	Input   *Input       `json:"input,omitempty"`
	Meta    *Meta        `json:"meta,omitempty"`
	Status  *Status      `json:"status,omitempty"`
	Results *Results     `json:"results,omitempty"`
}

// ReportError carries the backend's failure message.
type ReportError struct {
	Message string `json:"message"`
}

// Input echoes the query the backend evaluated.
type Input struct {
	Code string  `json:"code"`
	Date *string `json:"date,omitempty"`
}

// Meta describes the price data the analysis ran on.
type Meta struct {
	AsOf        string  `json:"as_of"`
	LatestClose float64 `json:"latest_close"`
	Currency    string  `json:"currency"`
	StockName   *string `json:"stock_name,omitempty"`
}

// Status summarises current designations. Margin and Credit are nullable.
type Status struct {
	Caution bool  `json:"caution"`
	Warning bool  `json:"warning"`
	Margin  *bool `json:"margin"`
	Credit  *bool `json:"credit"`
}

// Results holds the three designation buckets.
type Results struct {
	Overheating Bucket `json:"overheating"`
	Caution     Bucket `json:"caution"`
	Warning     Bucket `json:"warning"`
}

// Bucket is one designation tier's outcome.
type Bucket struct {
	Triggered bool    `json:"triggered"`
	Details   Details `json:"details"`
}

// Condition is one named rule evaluation inside a bucket.
type Condition struct {
	Val         float64  `json:"val"`
	Threshold   float64  `json:"threshold"`
	Triggered   bool     `json:"triggered"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	Description string   `json:"description,omitempty"`
	AtMax       *bool    `json:"at_max,omitempty"`
}

// Entry pairs a condition with its human-readable label.
type Entry struct {
	Label     string
	Condition Condition
}

// Details is either an explanatory text or an ordered list of conditions.
// Order matches the order of keys on the wire.
type Details struct {
	Text    string
	IsText  bool
	Entries []Entry
}

// TextDetails builds a text payload.
func TextDetails(text string) Details {
	return Details{Text: text, IsText: true}
}

// UnmarshalJSON accepts a JSON string or object. Object keys keep their
// received order. Any other value decodes to an empty mapping.
func (d *Details) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Details{}
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = TextDetails(s)
		return nil
	}

	if trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return fmt.Errorf("details: invalid JSON %q", string(trimmed))
		}
		*d = Details{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("details: %w", err)
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("details: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("details: unexpected key token %v", tok)
		}
		var c Condition
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("details: condition %q: %w", label, err)
		}
		entries = append(entries, Entry{Label: label, Condition: c})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("details: %w", err)
	}

	*d = Details{Entries: entries}
	return nil
}

// MarshalJSON writes text payloads as a JSON string and mappings as an
// object whose keys follow Entries.
func (d Details) MarshalJSON() ([]byte, error) {
	if d.IsText {
		return json.Marshal(d.Text)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Condition)
		if err != nil {
			return nil, fmt.Errorf("details: condition %q: %w", e.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HasDescriptions reports whether any condition carries a description.
func (d Details) HasDescriptions() bool {
	if d.IsText {
		return false
	}
	for _, e := range d.Entries {
		if e.Condition.Description != "" {
			return true
		}
	}
	return false
}

// MinTargetPrice returns the smallest finite target price among the
// conditions. Text payloads and mappings without any numeric target price
// report ok == false, which is distinct from a zero price.
func (d Details) MinTargetPrice() (float64, bool) {
	if d.IsText {
		return 0, false
	}

	var (
		min   float64
		found bool
	)
	for _, e := range d.Entries {
		tp := e.Condition.TargetPrice
		if tp == nil || math.IsNaN(*tp) || math.IsInf(*tp, 0) {
			continue
		}
		if !found || *tp < min {
			min = *tp
			found = true
		}
	}
	return min, found
}

// Headline is the single status label shown on the stock card.
type Headline struct {
	Label string
	Class string
}

const (
	HeadlineWarning = "투자경고"
	HeadlineCaution = "투자주의"
	HeadlineNormal  = "정상"
)

// Headline picks exactly one label: warning over caution over normal.
func (s *Status) Headline() Headline {
	switch {
	case s != nil && s.Warning:
		return Headline{Label: HeadlineWarning, Class: "danger"}
	case s != nil && s.Caution:
		return Headline{Label: HeadlineCaution, Class: "warning"}
	default:
		return Headline{Label: HeadlineNormal, Class: "ok"}
	}
}

// DisplayName returns the stock name, then the input code, then a placeholder.
func (r *Report) DisplayName() string {
	if r.Meta != nil && r.Meta.StockName != nil && *r.Meta.StockName != "" {
		return *r.Meta.StockName
	}
	if r.Input != nil && r.Input.Code != "" {
		return r.Input.Code
	}
	return "종목명 없음"
}

// Renderable reports whether the report carries everything the card needs.
func (r *Report) Renderable() bool {
	return r != nil && r.OK && r.Meta != nil && r.Results != nil
}

// Package render shapes a report into what the page and the MCP tool show.
package render

import (
	"strings"

	"github.com/bobmcallan/krx-alert-portal/internal/format"
	"github.com/bobmcallan/krx-alert-portal/internal/models"
)

// Placeholder fills cells that have no value.
const Placeholder = "-"

// Column titles in display order. ColDescription is appended only when a row
// carries a description.
const (
	ColLabel       = "항목"
	ColValue       = "값"
	ColThreshold   = "기준"
	ColVerdict     = "판정"
	ColTargetPrice = "대상가"
	ColDescription = "설명"
)

const (
	verdictMet    = "충족"
	verdictNotMet = "미충족"
	atMaxSuffix   = " (최고가)"
)

// Row is one formatted condition.
type Row struct {
	Label       string
	Value       string
	Threshold   string
	Verdict     string
	AtMax       string
	TargetPrice string
	Description string
}

// Table is a details payload ready for display. When IsText is set only
// Text is meaningful.
type Table struct {
	IsText         bool
	Text           string
	Columns        []string
	Rows           []Row
	HasDescription bool
}

// BuildTable formats a details payload. Row order follows the payload.
func BuildTable(d models.Details) Table {
	if d.IsText {
		return Table{IsText: true, Text: d.Text}
	}

	t := Table{
		Columns:        []string{ColLabel, ColValue, ColThreshold, ColVerdict, ColTargetPrice},
		HasDescription: d.HasDescriptions(),
	}
	if t.HasDescription {
		t.Columns = append(t.Columns, ColDescription)
	}

	t.Rows = make([]Row, 0, len(d.Entries))
	for _, e := range d.Entries {
		t.Rows = append(t.Rows, buildRow(e, t.HasDescription))
	}
	return t
}

func buildRow(e models.Entry, withDescription bool) Row {
	c := e.Condition
	row := Row{
		Label:       e.Label,
		Value:       format.Value(e.Label, c.Val),
		Threshold:   format.Threshold(e.Label, c.Threshold),
		Verdict:     verdictNotMet,
		TargetPrice: Placeholder,
	}
	if c.Triggered {
		row.Verdict = verdictMet
	}
	if c.AtMax != nil && *c.AtMax {
		row.AtMax = atMaxSuffix
	}
	if c.TargetPrice != nil {
		row.TargetPrice = format.Number(*c.TargetPrice)
	}
	if withDescription {
		row.Description = Placeholder
		if c.Description != "" {
			row.Description = c.Description
		}
	}
	return row
}

// Badge is the pass/fail marker on a section header.
type Badge struct {
	Label string
	Class string
}

// BadgeFor returns the badge for a bucket's triggered flag.
func BadgeFor(triggered bool) Badge {
	if triggered {
		return Badge{Label: "지정예상", Class: "badge badge--danger"}
	}
	return Badge{Label: "해당없음", Class: "badge badge--ok"}
}

// Section is one designation bucket.
type Section struct {
	Title string
	Badge Badge
	Table Table
}

// Section titles.
const (
	TitleOverheating = "단기과열종목"
	TitleCaution     = "투자주의종목"
	TitleWarning     = "투자경고종목"
)

// Card is the whole result view for one report.
type Card struct {
	Name          string
	Code          string
	Headline      models.Headline
	CautionTarget string
	WarningTarget string
	AsOf          string
	LatestClose   string
	Sections      []Section
}

// BuildCard formats a renderable report. ok is false when the report lacks
// meta or results.
func BuildCard(r *models.Report) (Card, bool) {
	if !r.Renderable() {
		return Card{}, false
	}

	card := Card{
		Name:          r.DisplayName(),
		Headline:      r.Status.Headline(),
		CautionTarget: targetLabel(r.Results.Caution.Details),
		WarningTarget: targetLabel(r.Results.Warning.Details),
		AsOf:          r.Meta.AsOf,
		LatestClose:   format.Money(r.Meta.LatestClose, r.Meta.Currency),
		Sections: []Section{
			buildSection(TitleOverheating, r.Results.Overheating),
			buildSection(TitleCaution, r.Results.Caution),
			buildSection(TitleWarning, r.Results.Warning),
		},
	}
	if r.Input != nil {
		card.Code = r.Input.Code
	}
	return card, true
}

func buildSection(title string, b models.Bucket) Section {
	return Section{Title: title, Badge: BadgeFor(b.Triggered), Table: BuildTable(b.Details)}
}

func targetLabel(d models.Details) string {
	if tp, ok := d.MinTargetPrice(); ok {
		return format.Won(tp)
	}
	return Placeholder
}

// APIHint shows the backend path a query for code and date will hit.
func APIHint(code, date string) string {
	code = strings.TrimSpace(code)
	date = strings.TrimSpace(date)
	if code == "" {
		code = "CODE"
	}
	hint := "/api/stock/" + code
	if date != "" {
		hint += "?date=" + date
	}
	return hint
}

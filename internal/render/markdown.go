package render

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/krx-alert-portal/internal/models"
)

// Markdown formats a report for MCP clients.
func Markdown(r *models.Report) string {
	card, ok := BuildCard(r)
	if !ok {
		return "보고서에 표시할 데이터가 없습니다."
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", card.Name, card.Code))
	sb.WriteString(fmt.Sprintf("**상태:** %s\n", card.Headline.Label))
	sb.WriteString(fmt.Sprintf("**기준일:** %s\n", card.AsOf))
	sb.WriteString(fmt.Sprintf("**최근 종가:** %s\n", card.LatestClose))
	sb.WriteString(fmt.Sprintf("**투자주의 기준가(근사):** %s\n", card.CautionTarget))
	sb.WriteString(fmt.Sprintf("**투자경고 기준가(근사):** %s\n", card.WarningTarget))

	for _, s := range card.Sections {
		sb.WriteString(fmt.Sprintf("\n## %s (%s)\n\n", s.Title, s.Badge.Label))
		writeTable(&sb, s.Table)
	}

	return sb.String()
}

func writeTable(sb *strings.Builder, t Table) {
	if t.IsText {
		sb.WriteString(t.Text)
		sb.WriteString("\n")
		return
	}
	if len(t.Rows) == 0 {
		sb.WriteString("_항목 없음_\n")
		return
	}

	sb.WriteString("| " + strings.Join(t.Columns, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(t.Columns)) + "\n")
	for _, r := range t.Rows {
		cells := []string{r.Label, r.Value, r.Threshold, r.Verdict + r.AtMax, r.TargetPrice}
		if t.HasDescription {
			cells = append(cells, r.Description)
		}
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", "\\|")
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/LungScan/internal/report"
)

// markdownFormatter formats output as a Markdown document
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(batch *Batch) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Chest X-Ray Analysis\n\n")
	if !batch.StartedAt.IsZero() {
		fmt.Fprintf(&b, "**Started:** %s  \n", formatTime(batch.StartedAt))
	}
	if batch.Endpoint != "" {
		fmt.Fprintf(&b, "**Service:** `%s`\n\n", batch.Endpoint)
	}

	f.writeResultsTable(&b, batch)
	f.writeRecommendations(&b, batch)

	b.WriteString("## Disclaimer\n\n")
	b.WriteString(strings.ReplaceAll(report.Disclaimer, " \n", " ") + "\n")

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeResultsTable(b *strings.Builder, batch *Batch) {
	b.WriteString("## Results\n\n")
	b.WriteString("| File | Prediction | Confidence | Notes |\n")
	b.WriteString("|------|------------|------------|-------|\n")

	for _, o := range batch.Outcomes {
		if o.Failed() {
			fmt.Fprintf(b, "| %s | - | - | %s |\n", escapeMarkdownCell(o.Name), escapeMarkdownCell(singleLine(o.ErrorMessage())))
			continue
		}
		notes := ""
		if o.ReportPath != "" {
			notes = "report: `" + o.ReportPath + "`"
		}
		fmt.Fprintf(b, "| %s | %s | %d%% | %s |\n", escapeMarkdownCell(o.Name), o.Result.Prediction, o.Result.Percent(), notes)
	}

	positive, negative, failed := batch.Counts()
	fmt.Fprintf(b, "\n%d image(s): %d pneumonia detected, %d normal, %d failed\n\n", len(batch.Outcomes), positive, negative, failed)
}

// writeRecommendations lists each distinct recommendation once
func (f *markdownFormatter) writeRecommendations(b *strings.Builder, batch *Batch) {
	seen := make(map[string]bool)
	var recs []string
	for _, o := range batch.Outcomes {
		if o.Failed() {
			continue
		}
		rec := report.Recommendation(o.Result.Label)
		if !seen[rec] {
			seen[rec] = true
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		return
	}

	b.WriteString("## Recommendations\n\n")
	for _, rec := range recs {
		b.WriteString("- " + rec + "\n")
	}
	b.WriteString("\n")
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

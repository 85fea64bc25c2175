package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a terminal formatter
func NewTerminal(color, useEmoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = useEmoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(batch *Batch) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	for _, o := range batch.Outcomes {
		f.writeOutcome(&b, o)
	}
	if len(batch.Outcomes) > 1 {
		f.writeSummary(&b, batch)
	}
	f.writeDisclaimer(&b)

	return []byte(b.String()), nil
}

// writeHeader writes a boxed title
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Chest X-Ray Analysis"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) writeOutcome(b *strings.Builder, o *Outcome) {
	if o.Failed() {
		symbol := termfmt.GetEmoji("error", f.opts)
		fmt.Fprintf(b, "%s %s\n", symbol, o.Name)
		items := []termfmt.TreeItem{{Label: "Error", Value: o.ErrorMessage(), Last: true}}
		b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
		return
	}

	fmt.Fprintf(b, "%s %s\n", f.labelSymbol(o.Result.Label), o.Name)

	items := []termfmt.TreeItem{
		{Label: "Prediction", Value: o.Result.Prediction},
		{Label: "Confidence", Value: fmt.Sprintf("%d%% %s", o.Result.Percent(), termfmt.CreateConfidenceBar(o.Result.Confidence, f.opts))},
		{Label: "Type", Value: fmt.Sprintf("%s (%s)", o.MimeType, formatSize(o.Size))},
		{Label: "Took", Value: o.Duration.Round(millisecond).String(), Last: o.ReportPath == ""},
	}
	if o.ReportPath != "" {
		items = append(items, termfmt.TreeItem{Label: "Report", Value: o.ReportPath, Last: true})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")

	symbol := termfmt.GetEmoji("info", f.opts)
	fmt.Fprintf(b, "%s %s\n\n", symbol, report.Recommendation(o.Result.Label))
}

func (f *terminalFormatter) writeSummary(b *strings.Builder, batch *Batch) {
	positive, negative, failed := batch.Counts()

	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")
	items := []termfmt.TreeItem{
		{Label: "Images", Value: fmt.Sprintf("%d", len(batch.Outcomes))},
		{Label: "Pneumonia detected", Value: fmt.Sprintf("%d", positive)},
		{Label: "Normal", Value: fmt.Sprintf("%d", negative)},
		{Label: "Failed", Value: fmt.Sprintf("%d", failed), Last: true},
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeDisclaimer(b *strings.Builder) {
	symbol := termfmt.GetEmoji("warning", f.opts)
	b.WriteString(symbol + " " + strings.ReplaceAll(report.Disclaimer, " \n", "\n   ") + "\n")
}

func (f *terminalFormatter) labelSymbol(label predict.Label) string {
	if !f.opts.Emoji {
		if label == predict.LabelPositive {
			return "[POS]"
		}
		return "[NEG]"
	}
	return emoji.ForLabel(label == predict.LabelPositive)
}

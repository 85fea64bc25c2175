package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LungScan/internal/controller"
	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
	"github.com/yildizm/LungScan/internal/ui/components"
)

// Screen is everything the render step needs. Render is a pure function of it.
type Screen struct {
	State    controller.Snapshot
	Preview  *components.ImagePreview
	Endpoint string
	WatchDir string
	ProbeErr error

	Editing   bool
	PathInput string

	Status      string
	StatusError bool
	ShowHelp    bool
	Session     string

	SpinnerFrame int
	Width        int
	Height       int
}

// Render draws the screen for the current phase
func Render(s Screen, styles *Styles) string {
	sections := []string{renderHeader(s, styles)}

	if s.ProbeErr != nil {
		sections = append(sections, styles.Banner.Render(fmt.Sprintf(
			"%s Cannot reach the prediction service at %s. Analysis may fail.",
			emoji.GetEmoji("warning"), s.Endpoint)))
	}

	switch s.State.Phase {
	case controller.PhaseIdle:
		sections = append(sections, renderIdle(s, styles))
	case controller.PhasePreviewing:
		sections = append(sections, renderPreviewing(s, styles))
	case controller.PhaseLoading:
		sections = append(sections, renderLoading(s, styles))
	case controller.PhaseResultShown:
		sections = append(sections, renderResult(s, styles))
	}

	if s.Editing {
		sections = append(sections, styles.Key.Render("Image path: ")+styles.Input.Render(s.PathInput+"█"))
	}

	if s.State.Notice != nil {
		sections = append(sections, styles.Notice.Render(
			emoji.GetEmoji("error")+" "+s.State.Notice.UserMessage()+"  "+styles.Muted.Render("(x to dismiss)")))
	}

	if s.Status != "" {
		style := styles.Success
		if s.StatusError {
			style = styles.Error
		}
		sections = append(sections, style.Render(s.Status))
	}

	keys := renderKeys(s, styles)
	if s.Session != "" {
		keys = styles.Muted.Render(emoji.GetEmoji("statistics")+" Session: "+s.Session) + "\n" + keys
	}
	sections = append(sections, keys)
	if s.ShowHelp {
		sections = append(sections, renderHelp(s, styles))
	}

	box := styles.Box
	if s.Width > 0 {
		box = box.Width(min(s.Width-4, 84))
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, joinNonEmpty(sections)...))
}

func renderHeader(s Screen, styles *Styles) string {
	title := styles.Title.Render(emoji.GetEmoji("lungs") + " LungScan")
	subtitle := styles.Muted.Render("Chest X-ray pneumonia screening")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
}

func renderIdle(s Screen, styles *Styles) string {
	lines := []string{
		styles.Header.Render(emoji.GetEmoji("upload") + " Select a chest X-ray image"),
		styles.Muted.Render("Accepted formats: " + s.State.Allowed),
	}
	if s.WatchDir != "" {
		lines = append(lines, styles.Info.Render(fmt.Sprintf("%s Drop images into %s", emoji.GetEmoji("watch"), s.WatchDir)))
	}
	return strings.Join(lines, "\n")
}

func renderImageInfo(s Screen, styles *Styles) string {
	in := s.State.Input
	if in == nil {
		return ""
	}
	info := fmt.Sprintf("%s %s  %s", emoji.GetEmoji("image"), styles.Header.Render(in.Name),
		styles.Muted.Render(fmt.Sprintf("%s, %s", in.MimeType, humanSize(in.Size()))))

	if s.Preview == nil {
		return info + "\n" + styles.Muted.Render("(preview unavailable)")
	}
	preview := styles.Muted.Render(s.Preview.Dimensions())
	if thumb := s.Preview.Render(); thumb != "" {
		preview = thumb + "\n" + preview
	}
	return info + "\n\n" + preview
}

func renderPreviewing(s Screen, styles *Styles) string {
	return renderImageInfo(s, styles)
}

func renderLoading(s Screen, styles *Styles) string {
	spinner := components.NewSpinner("Analyzing image...")
	spinner.Frame = s.SpinnerFrame
	spinner.Color = styles.Theme.Primary
	return renderImageInfo(s, styles) + "\n\n" + spinner.Render()
}

func renderResult(s Screen, styles *Styles) string {
	res := s.State.Result
	if res == nil {
		return ""
	}

	labelStyle := styles.Negative
	fill := lipgloss.TerminalColor(styles.Theme.Negative)
	if res.Label == predict.LabelPositive {
		labelStyle = styles.Positive
		fill = styles.Theme.Positive
	}

	meter := components.NewConfidenceMeter(30)
	meter.SetConfidence(res.Confidence)
	meter.Fill = fill
	meter.Empty = styles.Theme.Muted
	meter.Plain = styles.Plain

	name := ""
	if s.State.Input != nil {
		name = styles.Muted.Render(s.State.Input.Name)
	}

	lines := []string{
		styles.Header.Render(emoji.GetEmoji("statistics")+" Analysis Result") + "  " + name,
		"",
		emoji.ForLabel(res.Label == predict.LabelPositive) + " " + labelStyle.Render(res.Prediction),
		"Confidence: " + meter.Render(),
		"",
		styles.Header.Render(emoji.GetEmoji("recommend") + " Recommendation"),
		report.Recommendation(res.Label),
	}
	return strings.Join(lines, "\n")
}

type keyHint struct {
	key, desc string
}

func keysFor(s Screen) []keyHint {
	if s.Editing {
		return []keyHint{{"enter", "open"}, {"esc", "cancel"}}
	}

	var keys []keyHint
	switch s.State.Phase {
	case controller.PhaseIdle:
		keys = append(keys, keyHint{"o", "open image"}, keyHint{"a", "analyze"})
	case controller.PhasePreviewing:
		keys = append(keys, keyHint{"a", "analyze"}, keyHint{"o", "choose another"}, keyHint{"r", "reset"})
	case controller.PhaseLoading:
		keys = append(keys, keyHint{"r", "cancel"})
	case controller.PhaseResultShown:
		keys = append(keys, keyHint{"e", "export report"}, keyHint{"r", "new scan"})
	}
	if s.State.Notice != nil {
		keys = append(keys, keyHint{"x", "dismiss"})
	}
	return append(keys, keyHint{"?", "help"}, keyHint{"q", "quit"})
}

func renderKeys(s Screen, styles *Styles) string {
	hints := keysFor(s)
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, styles.Key.Render(h.key)+" "+styles.Muted.Render(h.desc))
	}
	return strings.Join(parts, styles.Muted.Render(" • "))
}

func renderHelp(s Screen, styles *Styles) string {
	lines := []string{
		styles.Header.Render(emoji.GetEmoji("help") + " Help"),
		"Open an image with o, type its path and press enter.",
		"Press a to send it to the prediction service at " + s.Endpoint + ".",
		"Export writes a text report you can share with a clinician.",
		styles.Muted.Render(emoji.GetEmoji("disclaimer") + " For educational purposes only. Not a medical diagnosis."),
	}
	return strings.Join(lines, "\n")
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func joinNonEmpty(sections []string) []string {
	out := make([]string, 0, len(sections)*2)
	for _, s := range sections {
		if s == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, s)
	}
	return out
}

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfidenceMeter renders a classification confidence as a filled bar
type ConfidenceMeter struct {
	Width      int
	Confidence float64
	Fill       lipgloss.TerminalColor
	Empty      lipgloss.TerminalColor
	Plain      bool
}

// NewConfidenceMeter creates a meter of the given width
func NewConfidenceMeter(width int) *ConfidenceMeter {
	return &ConfidenceMeter{
		Width: width,
		Fill:  lipgloss.Color("#10B981"),
		Empty: lipgloss.Color("#9CA3AF"),
	}
}

// SetConfidence sets the value, clamped to [0,1]
func (m *ConfidenceMeter) SetConfidence(confidence float64) {
	switch {
	case confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}
	m.Confidence = confidence
}

// Percent returns the confidence rounded to a whole percentage
func (m *ConfidenceMeter) Percent() int {
	return int(m.Confidence*100 + 0.5)
}

// Render renders the meter followed by the percentage
func (m *ConfidenceMeter) Render() string {
	width := m.Width
	if width < 1 {
		width = 1
	}

	filledWidth := int(float64(width)*m.Confidence + 0.5)
	if filledWidth > width {
		filledWidth = width
	}
	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	if !m.Plain {
		filled = lipgloss.NewStyle().Foreground(m.Fill).Bold(true).Render(filled)
		empty = lipgloss.NewStyle().Foreground(m.Empty).Render(empty)
	}

	return fmt.Sprintf("[%s%s] %d%%", filled, empty, m.Percent())
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a spinning activity indicator
type Spinner struct {
	Frame int
	Label string
	Color lipgloss.TerminalColor
}

// NewSpinner creates a new spinner
func NewSpinner(label string) *Spinner {
	return &Spinner{Label: label, Color: lipgloss.Color("#10B981")}
}

// Tick advances the animation
func (s *Spinner) Tick() {
	s.Frame = (s.Frame + 1) % len(spinnerFrames)
}

// Render renders the spinner
func (s *Spinner) Render() string {
	char := lipgloss.NewStyle().Foreground(s.Color).Bold(true).Render(spinnerFrames[s.Frame%len(spinnerFrames)])
	if s.Label != "" {
		return char + " " + s.Label
	}
	return char
}

package ui

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a color palette for the scan screens
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// Positive and Negative color a finding
	Positive lipgloss.AdaptiveColor
	Negative lipgloss.AdaptiveColor

	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Available themes
var (
	DefaultTheme = Theme{
		Name:      "default",
		Primary:   adaptive("#1E40AF", "#3B82F6"),
		Secondary: adaptive("#6B7280", "#9CA3AF"),
		Success:   adaptive("#059669", "#10B981"),
		Warning:   adaptive("#D97706", "#F59E0B"),
		Error:     adaptive("#DC2626", "#EF4444"),
		Info:      adaptive("#0891B2", "#06B6D4"),
		Positive:  adaptive("#B91C1C", "#F87171"),
		Negative:  adaptive("#047857", "#34D399"),
		Border:    adaptive("#D1D5DB", "#374151"),
		Muted:     adaptive("#6B7280", "#9CA3AF"),
		Selected:  adaptive("#DBEAFE", "#1E3A8A"),
	}

	HighContrastTheme = Theme{
		Name:      "high-contrast",
		Primary:   adaptive("#000000", "#FFFFFF"),
		Secondary: adaptive("#666666", "#BBBBBB"),
		Success:   adaptive("#006600", "#00FF00"),
		Warning:   adaptive("#CC6600", "#FFAA00"),
		Error:     adaptive("#CC0000", "#FF4444"),
		Info:      adaptive("#0066CC", "#4499FF"),
		Positive:  adaptive("#CC0000", "#FF4444"),
		Negative:  adaptive("#006600", "#00FF00"),
		Border:    adaptive("#000000", "#FFFFFF"),
		Muted:     adaptive("#666666", "#BBBBBB"),
		Selected:  adaptive("#CCCCCC", "#333333"),
	}

	MinimalTheme = Theme{
		Name:      "minimal",
		Primary:   adaptive("#2D3748", "#E2E8F0"),
		Secondary: adaptive("#718096", "#A0AEC0"),
		Success:   adaptive("#2F855A", "#68D391"),
		Warning:   adaptive("#C05621", "#F6AD55"),
		Error:     adaptive("#C53030", "#FC8181"),
		Info:      adaptive("#2B6CB0", "#63B3ED"),
		Positive:  adaptive("#C53030", "#FC8181"),
		Negative:  adaptive("#2F855A", "#68D391"),
		Border:    adaptive("#E2E8F0", "#2D3748"),
		Muted:     adaptive("#A0AEC0", "#718096"),
		Selected:  adaptive("#EDF2F7", "#2D3748"),
	}
)

var (
	currentTheme  atomic.Pointer[Theme]
	colorDisabled atomic.Bool
)

func init() {
	currentTheme.Store(&DefaultTheme)
}

// GetTheme returns the active theme
func GetTheme() Theme {
	return *currentTheme.Load()
}

// SetThemeByName activates a theme, reporting whether the name was known
func SetThemeByName(name string) bool {
	switch name {
	case "default", "":
		currentTheme.Store(&DefaultTheme)
	case "high-contrast":
		currentTheme.Store(&HighContrastTheme)
	case "minimal":
		currentTheme.Store(&MinimalTheme)
	default:
		return false
	}
	return true
}

// GetAvailableThemes returns the theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// SetColorDisabled turns colors off regardless of NO_COLOR
func SetColorDisabled(disabled bool) {
	colorDisabled.Store(disabled)
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return colorDisabled.Load() || os.Getenv("NO_COLOR") != ""
}

// Styles holds the styles derived from a theme
type Styles struct {
	Theme Theme
	Plain bool

	Title    lipgloss.Style
	Header   lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Key      lipgloss.Style
	Input    lipgloss.Style
	Box      lipgloss.Style
	Banner   lipgloss.Style
	Notice   lipgloss.Style
}

// GetStyles builds styles from the active theme
func GetStyles() *Styles {
	theme := GetTheme()

	if IsColorDisabled() {
		plain := lipgloss.NewStyle()
		bold := plain.Bold(true)
		box := plain.Border(lipgloss.NormalBorder()).Padding(1, 2)
		return &Styles{
			Theme: theme, Plain: true,
			Title: bold, Header: bold, Body: plain, Muted: plain,
			Success: bold, Warning: bold, Error: bold, Info: plain,
			Positive: bold, Negative: bold, Key: bold, Input: plain,
			Box:    box,
			Banner: plain,
			Notice: plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		}
	}

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),

		Positive: lipgloss.NewStyle().
			Foreground(theme.Positive).
			Bold(true),

		Negative: lipgloss.NewStyle().
			Foreground(theme.Negative).
			Bold(true),

		Key: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Input: lipgloss.NewStyle().
			Background(theme.Selected).
			Foreground(theme.Primary).
			Padding(0, 1),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),

		Banner: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Notice: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Foreground(theme.Error).
			Padding(0, 1),
	}
}

// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// Theme is the console palette. Every colour adapts to light and dark
// terminal backgrounds.
type Theme struct {
	Accent    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Subtle    lipgloss.AdaptiveColor
	Surface   lipgloss.AdaptiveColor
	Edge      lipgloss.AdaptiveColor

	// Positive, Caution and Danger double as document status colours.
	Positive lipgloss.AdaptiveColor
	Caution  lipgloss.AdaptiveColor
	Danger   lipgloss.AdaptiveColor
}

// DefaultTheme returns the blue/cyan console palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#2563EB"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#06B6D4"},
		Text:      lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"},
		Subtle:    lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6C7086"},
		Surface:   lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#181825"},
		Edge:      lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#45475A"},
		Positive:  lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#A6E3A1"},
		Caution:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F9E2AF"},
		Danger:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F38BA8"},
	}
}

// Styles are the lipgloss styles the views render with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style

	// Selected highlights the cursor row in lists and tables.
	Selected lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	ActiveTab  lipgloss.Style
	Tab        lipgloss.Style

	// UserLabel and AssistantLabel prefix chat messages.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style

	// Grounded and Limited render the answer grounding indicator.
	Grounded lipgloss.Style
	Limited  lipgloss.Style

	// Dialog frames the destructive-action confirmation.
	Dialog lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	tab := fg(theme.Subtle).Padding(0, 2)
	framed := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Highlight).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Subtle),
		Help:     fg(theme.Subtle).Italic(true),
		Selected: fg(theme.Text).Background(theme.Accent).Bold(true),

		Success: fg(theme.Positive),
		Warning: fg(theme.Caution),
		Error:   fg(theme.Danger),

		InputField: framed.BorderForeground(theme.Edge).Padding(0, 1),
		StatusBar:  fg(theme.Subtle).Background(theme.Surface).Padding(0, 1),
		ActiveTab:  tab.Foreground(theme.Text).Background(theme.Accent).Bold(true),
		Tab:        tab,

		UserLabel:      fg(theme.Highlight).Bold(true),
		AssistantLabel: fg(theme.Accent).Bold(true),

		Grounded: fg(theme.Positive),
		Limited:  fg(theme.Caution),

		Dialog: framed.BorderForeground(theme.Danger).Padding(1, 2),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForLevel returns the style for a notification level.
func (s *Styles) ForLevel(level domain.NotificationLevel) lipgloss.Style {
	switch level {
	case domain.LevelSuccess:
		return s.Success
	case domain.LevelWarning:
		return s.Warning
	case domain.LevelError:
		return s.Error
	default:
		return s.Normal
	}
}

// ForStatus colours a document status: completed documents are
// positive, processing ones cautionary and failed ones dangerous.
func (s *Styles) ForStatus(status domain.DocumentStatus) lipgloss.Style {
	switch status {
	case domain.DocumentCompleted:
		return s.Success
	case domain.DocumentProcessing:
		return s.Warning
	case domain.DocumentFailed:
		return s.Error
	default:
		return s.Muted
	}
}

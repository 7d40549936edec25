// Package ui provides the visual styling for the december interactive CLI.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Dark palette (default)
	DarkForeground = lipgloss.Color("#e8e8e8")
	DarkPrimary    = lipgloss.Color("#7aa2f7")
	DarkAccent     = lipgloss.Color("#9ece6a")
	DarkMuted      = lipgloss.Color("#565f89")
	DarkBorder     = lipgloss.Color("#3b4261")

	// Light palette
	LightForeground = lipgloss.Color("#24292f")
	LightPrimary    = lipgloss.Color("#0969da")
	LightAccent     = lipgloss.Color("#1a7f37")
	LightMuted      = lipgloss.Color("#8c959f")
	LightBorder     = lipgloss.Color("#d0d7de")

	// Semantic colors, same in both modes
	Warning     = lipgloss.Color("#e0af68")
	Destructive = lipgloss.Color("#f7768e")
)

// Styles holds the rendered style set for the chat interface.
type Styles struct {
	Title       lipgloss.Style
	UserLabel   lipgloss.Style
	BotLabel    lipgloss.Style
	Disposition lipgloss.Style
	Question    lipgloss.Style
	Assumption  lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
	InputBorder lipgloss.Style
	StatusBar   lipgloss.Style
}

// NewStyles builds the style set for the detected terminal background.
func NewStyles() Styles {
	fg, primary, accent, muted, border := DarkForeground, DarkPrimary, DarkAccent, DarkMuted, DarkBorder
	if isLightTerminal() {
		fg, primary, accent, muted, border = LightForeground, LightPrimary, LightAccent, LightMuted, LightBorder
	}
	_ = fg

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(primary),
		UserLabel:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		BotLabel:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Disposition: lipgloss.NewStyle().Foreground(accent).Italic(true),
		Question:    lipgloss.NewStyle().Foreground(primary),
		Assumption:  lipgloss.NewStyle().Foreground(muted).Italic(true),
		Warning:     lipgloss.NewStyle().Foreground(Warning),
		Error:       lipgloss.NewStyle().Foreground(Destructive),
		Muted:       lipgloss.NewStyle().Foreground(muted),
		InputBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border),
		StatusBar:   lipgloss.NewStyle().Foreground(muted),
	}
}

// isLightTerminal checks COLORFGBG for a light background index.
func isLightTerminal() bool {
	v := os.Getenv("COLORFGBG")
	if len(v) == 0 {
		return false
	}
	// Format is "foreground;background"; 7 and 15 are light backgrounds.
	last := v[len(v)-1]
	return last == '7' || (len(v) >= 2 && v[len(v)-2:] == "15")
}

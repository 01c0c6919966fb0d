// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/termemu/termemu/internal/shell"
)

const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
	ColorVerbose   = lipgloss.Color("#9CA3AF")
)

// Styles renders output lines. Build it from the renderer of the output it
// is drawn on so SSH sessions get their own color profile.
type Styles struct {
	Title   lipgloss.Style
	Prompt  lipgloss.Style
	Plain   lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Hint    lipgloss.Style
	Editor  lipgloss.Style
}

// NewStyles returns the palette for r. A nil renderer uses the default one.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Prompt:  r.NewStyle().Bold(true).Foreground(ColorSuccess),
		Plain:   r.NewStyle(),
		Info:    r.NewStyle().Foreground(ColorHighlight),
		Error:   r.NewStyle().Foreground(ColorError),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Hint:    r.NewStyle().Foreground(ColorMuted),
		Editor:  r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorPrimary),
	}
}

// Render formats l for the scrollback.
func (s Styles) Render(l shell.Line) string {
	switch l.Kind {
	case shell.LineCommand:
		return s.Prompt.Render(l.Prompt) + " " + l.Text
	case shell.LineInfo:
		return s.Info.Render(l.Text)
	case shell.LineError:
		return s.Error.Render(l.Text)
	case shell.LineSuccess:
		return s.Success.Render(l.Text)
	default:
		return s.Plain.Render(l.Text)
	}
}

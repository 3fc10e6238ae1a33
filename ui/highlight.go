package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/readaloud/tts"
)

// ANSI indexes of the highlight colors accepted in the configuration.
var highlightColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// HighlightStyle returns the style for the span being spoken.
func HighlightStyle(r *lipgloss.Renderer, color string) lipgloss.Style {
	c, ok := highlightColors[strings.ToLower(color)]
	if !ok {
		c = highlightColors["yellow"]
	}
	fg := "0"
	if c == "0" || c == "4" {
		fg = "15"
	}
	return r.NewStyle().
		Background(lipgloss.Color(c)).
		Foreground(lipgloss.Color(fg)).
		Bold(true)
}

// Highlight renders text with span styled. Text is returned unchanged when
// the span is empty or does not fall on character boundaries of text.
func Highlight(text string, span tts.Span, style lipgloss.Style) string {
	if span.Empty() || !span.Valid(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 32)
	b.WriteString(text[:span.Start])
	b.WriteString(style.Render(text[span.Start:span.End]))
	b.WriteString(text[span.End:])
	return b.String()
}

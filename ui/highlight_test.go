package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/muesli/termenv"
)

func ansiRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}

func TestHighlight(t *testing.T) {
	style := HighlightStyle(ansiRenderer(), "yellow")
	const text = "read this aloud"

	tests := []struct {
		name string
		span tts.Span
		want string
	}{
		{"middle word", tts.Span{Start: 5, End: 9}, "read " + style.Render("this") + " aloud"},
		{"first word", tts.Span{Start: 0, End: 4}, style.Render("read") + " this aloud"},
		{"empty span", tts.Span{Start: 3, End: 3}, text},
		{"out of range", tts.Span{Start: 10, End: 40}, text},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(text, tt.span, style); got != tt.want {
				t.Errorf("Highlight() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHighlightStyle(t *testing.T) {
	r := ansiRenderer()

	tests := []struct {
		color string
		seq   string
	}{
		{"yellow", "43"},
		{"Cyan", "46"},
		{"blue", "44"},
		{"unknown", "43"},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			out := HighlightStyle(r, tt.color).Render("x")
			if !strings.Contains(out, tt.seq) {
				t.Errorf("Render() = %q, want background %s", out, tt.seq)
			}
		})
	}
}

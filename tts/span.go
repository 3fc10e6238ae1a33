package tts

import (
	"fmt"
	"unicode/utf8"
)

// Span is the half-open byte range [Start, End) of the text being spoken.
type Span struct {
	Start int
	End   int
}

// Valid reports whether the span lies within text and on rune boundaries.
func (s Span) Valid(text string) bool {
	if s.Start < 0 || s.Start > s.End || s.End > len(text) {
		return false
	}
	if s.Start < len(text) && !utf8.RuneStart(text[s.Start]) {
		return false
	}
	if s.End < len(text) && !utf8.RuneStart(text[s.End]) {
		return false
	}
	return true
}

// Empty reports whether the span covers no text.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Slice returns the spoken part of text, or "" if the span does not fit it.
func (s Span) Slice(text string) string {
	if !s.Valid(text) {
		return ""
	}
	return text[s.Start:s.End]
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

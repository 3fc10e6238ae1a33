package tts

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between the session and the UI.

// StartedMsg indicates the engine started speaking the current utterance.
type StartedMsg struct{}

// HighlightMsg carries the span of the text being spoken.
type HighlightMsg struct {
	Span Span
}

// DoneMsg indicates the current utterance finished.
type DoneMsg struct{}

// ErrorMsg indicates the current utterance or the engine failed.
// Recoverable is false when speaking again cannot succeed.
type ErrorMsg struct {
	Message     string
	Recoverable bool
}

// SpeakRequestedMsg indicates Speak was called with Text.
type SpeakRequestedMsg struct {
	Text  string
	Voice Voice
}

// Notify registers listeners that turn every session event into a message
// passed to send, typically (*tea.Program).Send. It replaces any listener
// set before.
func (s *Session) Notify(send func(tea.Msg)) *Session {
	return s.
		OnStart(func() {
			send(StartedMsg{})
		}).
		OnHighlight(func(start, end int) {
			send(HighlightMsg{Span: Span{Start: start, End: end}})
		}).
		OnDone(func() {
			send(DoneMsg{})
		}).
		OnError(func(message string) {
			send(ErrorMsg{Message: message, Recoverable: IsRecoverableError(s.Err())})
		})
}

// SpeakCmd creates a command speaking text on s.
func SpeakCmd(s *Session, text string) tea.Cmd {
	return func() tea.Msg {
		voice := s.Voice()
		s.Speak(text)
		return SpeakRequestedMsg{Text: text, Voice: voice}
	}
}

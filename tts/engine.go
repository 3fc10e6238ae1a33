package tts

import (
	"context"

	"golang.org/x/text/language"
)

// Engine is the synthesis capability a Session drives. Implementations own
// their audio output and report progress asynchronously, usually from their
// own goroutines.
type Engine interface {
	// Init prepares the engine. It must return immediately and call done
	// exactly once, from any goroutine, when the engine is ready or has
	// failed.
	Init(ctx context.Context, done func(InitStatus))

	// SetLanguage selects the voice language used by the next Speak call.
	SetLanguage(tag language.Tag) error

	// SetPitch sets the pitch multiplier used by the next Speak call.
	SetPitch(pitch float64) error

	// SetRate sets the speech rate multiplier used by the next Speak call.
	SetRate(rate float64) error

	// SetProgressListener registers the callbacks for utterance progress.
	SetProgressListener(l ProgressListener)

	// Speak starts speaking text right away, flushing any utterance that
	// is still pending or in flight.
	Speak(text, utteranceID string) error

	// Stop halts the current utterance, if any.
	Stop() error

	// Shutdown releases every resource held by the engine.
	Shutdown() error
}

// EngineFactory creates a fresh, uninitialized Engine.
type EngineFactory func() (Engine, error)

// ProgressListener carries the four utterance callbacks an engine reports.
// Any slot may be nil.
type ProgressListener struct {
	OnStart func(utteranceID string)
	OnRange func(utteranceID string, start, end int)
	OnDone  func(utteranceID string)
	OnError func(utteranceID string, message string)
}

// Start reports the start of an utterance.
func (l ProgressListener) Start(id string) {
	if l.OnStart != nil {
		l.OnStart(id)
	}
}

// Range reports that the byte range [start, end) is being spoken.
func (l ProgressListener) Range(id string, start, end int) {
	if l.OnRange != nil {
		l.OnRange(id, start, end)
	}
}

// Done reports the completion of an utterance.
func (l ProgressListener) Done(id string) {
	if l.OnDone != nil {
		l.OnDone(id)
	}
}

// Error reports an utterance failure.
func (l ProgressListener) Error(id, message string) {
	if l.OnError != nil {
		l.OnError(id, message)
	}
}

// InitStatus is the outcome of Engine.Init. Zero is success, negative
// values are ErrorCodes.
type InitStatus int

// InitSuccess reports a ready engine.
const InitSuccess InitStatus = 0

// OK returns true if the engine initialized.
func (s InitStatus) OK() bool {
	return s == InitSuccess
}

// Code returns the error code carried by a failed status.
func (s InitStatus) Code() ErrorCode {
	return ErrorCode(s)
}

// Failed builds the InitStatus reporting code.
func Failed(code ErrorCode) InitStatus {
	return InitStatus(code)
}

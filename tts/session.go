// Package tts drives a single speech synthesis engine through one utterance
// at a time and republishes its progress so callers can highlight the words
// being spoken.
package tts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"
	"golang.org/x/text/language"
)

// Listeners holds at most one callback per event kind.
type Listeners struct {
	Start     func()
	Highlight func(start, end int)
	Done      func()
	Error     func(message string)
}

// Utterance is a speak request as it was issued to the engine.
type Utterance struct {
	ID    string
	Text  string
	Voice Voice
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used by the session.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics records session activity in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithVoice sets the voice the session starts with.
func WithVoice(v Voice) Option {
	return func(s *Session) {
		s.voice = v
	}
}

// Session owns one speech engine and speaks one utterance at a time. All
// methods are safe for concurrent use, though commands are expected to come
// from a single owner while engine events arrive from other goroutines.
type Session struct {
	factory EngineFactory
	logger  *log.Logger
	metrics *Metrics

	mu        sync.Mutex
	machine   *StateMachine
	engine    Engine
	voice     Voice
	text      string
	current   string
	pending   *Utterance
	listeners Listeners
	initGen   int
	lastErr   error

	ctx       context.Context
	cancel    context.CancelFunc
	onDestroy func(*Session)
}

// New creates a session whose engine is created by factory on the first
// Speak call.
func New(factory EngineFactory, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		factory: factory,
		logger:  log.Default().WithPrefix("tts"),
		machine: NewStateMachine(),
		voice:   DefaultVoice(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Init and lifecycle watchers stop once the session is gone.
	s.machine.OnEnter(StateDestroyed, cancel)

	return s
}

// Speak speaks text, preempting any utterance still in flight. The engine
// is initialized first if needed. Speak never blocks; the outcome is
// reported to the Done or Error listener.
func (s *Session) Speak(text string) *Session {
	s.mu.Lock()

	if s.machine.Current() == StateDestroyed {
		l := s.listeners
		s.mu.Unlock()
		s.report(l, NewSessionError(ErrSessionDestroyed, "session", "speak"))
		return s
	}
	if text == "" {
		l := s.listeners
		s.mu.Unlock()
		s.report(l, NewSessionError(ErrEmptyText, "session", "speak"))
		return s
	}

	u := Utterance{
		ID:    xid.New().String(),
		Text:  text,
		Voice: s.voice,
	}
	s.text = text
	s.current = u.ID

	switch s.machine.Current() {
	case StateIdle, StateError:
		s.startEngine(u)

	case StateInitializing:
		// The newest request replaces whatever was waiting for the engine.
		s.pending = &u
		s.mu.Unlock()

	default:
		engine := s.engine
		s.machine.Transition(StateSpeaking)
		s.mu.Unlock()
		s.issue(engine, u)
	}

	return s
}

// startEngine creates and initializes the engine, then releases s.mu.
func (s *Session) startEngine(u Utterance) {
	if s.factory == nil {
		l := s.listeners
		s.mu.Unlock()
		s.report(l, NewSessionError(ErrNoFactory, "engine", "create"))
		return
	}

	engine, err := s.factory()
	if err != nil {
		l := s.listeners
		s.mu.Unlock()
		s.logger.Error("Could not create speech engine", "err", err)
		s.report(l, NewSessionError(err, "engine", "create"))
		return
	}

	s.engine = engine
	s.pending = &u
	s.initGen++
	gen := s.initGen
	s.machine.Transition(StateInitializing)
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Debug("Initializing speech engine", "attempt", gen)
	started := time.Now()
	engine.Init(ctx, func(status InitStatus) {
		s.initDone(engine, gen, status, time.Since(started))
	})
}

func (s *Session) initDone(engine Engine, gen int, status InitStatus, took time.Duration) {
	s.metrics.initFinished(status, took)

	s.mu.Lock()
	if gen != s.initGen || s.engine != engine || s.machine.Current() != StateInitializing {
		s.mu.Unlock()
		s.logger.Debug("Ignoring stale engine initialization", "attempt", gen)
		return
	}

	if !status.OK() {
		s.engine = nil
		s.pending = nil
		s.machine.Transition(StateError)
		l := s.listeners
		s.mu.Unlock()

		if err := engine.Shutdown(); err != nil {
			s.logger.Debug("Engine shutdown after failed init", "err", err)
		}
		s.logger.Warn("Speech engine failed to initialize", "code", status.Code(), "took", took)
		s.metrics.eventForwarded("error")
		s.report(l, NewSessionError(nil, "engine", "init").WithCode(status.Code()))
		return
	}

	engine.SetProgressListener(ProgressListener{
		OnStart: s.handleStart,
		OnRange: s.handleRange,
		OnDone:  s.handleDone,
		OnError: s.handleError,
	})

	u := s.pending
	s.pending = nil
	if u == nil {
		s.machine.Transition(StateReady)
		s.mu.Unlock()
		return
	}
	s.machine.Transition(StateSpeaking)
	s.mu.Unlock()

	s.logger.Debug("Speech engine ready", "took", took)
	s.issue(engine, *u)
}

// issue applies the utterance voice and hands the text to the engine.
func (s *Session) issue(engine Engine, u Utterance) {
	if err := engine.SetLanguage(u.Voice.Language); err != nil {
		s.logger.Warn("Language not supported by engine", "language", u.Voice.Language, "err", err)
	}
	if err := engine.SetPitch(u.Voice.Pitch); err != nil {
		s.logger.Warn("Could not set pitch", "pitch", u.Voice.Pitch, "err", err)
	}
	if err := engine.SetRate(u.Voice.Rate); err != nil {
		s.logger.Warn("Could not set rate", "rate", u.Voice.Rate, "err", err)
	}

	if err := engine.Speak(u.Text, u.ID); err != nil {
		s.fail(u.ID, NewSessionError(err, "engine", "speak"))
		return
	}

	s.metrics.utteranceIssued()
	s.logger.Debug("Utterance issued", "id", u.ID, "bytes", len(u.Text), "voice", u.Voice)
}

// accept reports whether an event for id may be forwarded. Callers must
// hold s.mu.
func (s *Session) accept(id, kind string) bool {
	switch state := s.machine.Current(); {
	case state == StateDestroyed:
		s.drop(kind, "destroyed", id)
		return false
	case !state.HasEngine():
		s.drop(kind, "no_engine", id)
		return false
	case id != s.current:
		s.drop(kind, "superseded", id)
		return false
	}
	return true
}

func (s *Session) drop(kind, reason, id string) {
	s.metrics.eventDropped(kind, reason)
	s.logger.Debug("Dropping engine event", "kind", kind, "reason", reason, "id", id)
}

func (s *Session) handleStart(id string) {
	s.mu.Lock()
	if !s.accept(id, "start") {
		s.mu.Unlock()
		return
	}
	fn := s.listeners.Start
	s.mu.Unlock()

	s.metrics.eventForwarded("start")
	if fn != nil {
		fn()
	}
}

func (s *Session) handleRange(id string, start, end int) {
	s.mu.Lock()
	if !s.accept(id, "range") {
		s.mu.Unlock()
		return
	}
	if s.text == "" {
		s.mu.Unlock()
		s.drop("range", "no_text", id)
		return
	}
	if span := (Span{Start: start, End: end}); !span.Valid(s.text) {
		s.mu.Unlock()
		s.drop("range", "out_of_bounds", id)
		return
	}
	fn := s.listeners.Highlight
	s.mu.Unlock()

	s.metrics.eventForwarded("range")
	if fn != nil {
		fn(start, end)
	}
}

func (s *Session) handleDone(id string) {
	s.mu.Lock()
	if !s.accept(id, "done") {
		s.mu.Unlock()
		return
	}
	s.machine.Transition(StateReady)
	fn := s.listeners.Done
	s.mu.Unlock()

	s.metrics.eventForwarded("done")
	if fn != nil {
		fn()
	}
}

// handleError reports a failure the engine hit mid-utterance. The message
// reaches listeners verbatim.
func (s *Session) handleError(id, message string) {
	s.fail(id, NewSessionError(errors.New(message), "engine", "utterance").WithCode(CodeSynthesis))
}

func (s *Session) fail(id string, err error) {
	s.mu.Lock()
	if !s.accept(id, "error") {
		s.mu.Unlock()
		return
	}
	s.machine.Transition(StateReady)
	l := s.listeners
	s.mu.Unlock()

	s.metrics.eventForwarded("error")
	s.report(l, err)
}

// report records err as the last error and passes its text to the error
// listener. Callers must not hold s.mu.
func (s *Session) report(l Listeners, err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if se := (*SessionError)(nil); errors.As(err, &se) {
		s.logger.Debug("Speech error", "component", se.Component, "action", se.Action, "err", err)
	} else {
		s.logger.Debug("Speech error", "err", err)
	}
	if l.Error != nil {
		l.Error(err.Error())
	}
}

// Err returns the error last passed to the error listener, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Highlight does nothing. It keeps call chains reading like the intent.
func (s *Session) Highlight() *Session {
	return s
}

// OnHighlight sets the listener receiving the byte range being spoken,
// replacing any previous one.
func (s *Session) OnHighlight(fn func(start, end int)) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.Highlight = fn
	return s
}

// OnStart sets the listener called when an utterance starts.
func (s *Session) OnStart(fn func()) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.Start = fn
	return s
}

// OnDone sets the listener called when an utterance completes.
func (s *Session) OnDone(fn func()) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.Done = fn
	return s
}

// OnError sets the listener receiving error messages.
func (s *Session) OnError(fn func(message string)) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.Error = fn
	return s
}

// SetPitchAndRate changes the pitch and rate of the next utterance.
func (s *Session) SetPitchAndRate(pitch, rate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.voice
	v.Pitch, v.Rate = pitch, rate
	if err := v.Validate(); err != nil {
		return err
	}
	s.voice = v
	return nil
}

// ResetPitchAndRate restores DefaultPitchAndRate for the next utterance.
func (s *Session) ResetPitchAndRate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice.Pitch = DefaultPitchAndRate
	s.voice.Rate = DefaultPitchAndRate
}

// SetLanguage changes the language of the next utterance.
func (s *Session) SetLanguage(tag language.Tag) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice.Language = tag
	return s
}

// Voice returns the voice the next utterance will use.
func (s *Session) Voice() Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Text returns the text of the current utterance, or "" once destroyed.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// State returns the current lifecycle state.
func (s *Session) State() StateType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

// RegisterLifecycle destroys the session once ctx is done.
func (s *Session) RegisterLifecycle(ctx context.Context) *Session {
	go func() {
		select {
		case <-ctx.Done():
			s.Destroy()
		case <-s.ctx.Done():
		}
	}()
	return s
}

// Destroy stops any utterance, shuts the engine down and clears the text
// so late events are dropped. It is safe to call more than once.
func (s *Session) Destroy() {
	s.mu.Lock()
	if s.machine.Current() == StateDestroyed {
		s.mu.Unlock()
		return
	}
	engine := s.engine
	s.engine = nil
	s.text = ""
	s.current = ""
	s.pending = nil
	s.machine.Transition(StateDestroyed)
	onDestroy := s.onDestroy
	s.mu.Unlock()

	if engine != nil {
		if err := engine.Stop(); err != nil {
			s.logger.Debug("Engine stop failed", "err", err)
		}
		if err := engine.Shutdown(); err != nil {
			s.logger.Warn("Engine shutdown failed", "err", err)
		}
	}
	if onDestroy != nil {
		onDestroy(s)
	}

	s.logger.Debug("Speech session destroyed")
}

// Close implements io.Closer by destroying the session.
func (s *Session) Close() error {
	s.Destroy()
	return nil
}

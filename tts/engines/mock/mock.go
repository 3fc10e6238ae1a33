// Package mock provides a speech engine that speaks silently. It paces word
// ranges like a real voice would, which makes it useful for demos and tests.
package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/segment"
	"github.com/dgnsrekt/readaloud/tts"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// tokensPerWord is how many limiter tokens a word of weight 1 costs.
const tokensPerWord = 10

// Option configures an Engine.
type Option func(*Engine)

// WithWordsPerMinute sets the speaking pace at rate 1.
func WithWordsPerMinute(wpm int) Option {
	return func(e *Engine) {
		if wpm > 0 {
			e.wpm = wpm
		}
	}
}

// WithInitDelay makes Init take d before reporting.
func WithInitDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.initDelay = d
	}
}

// WithInitFailure makes Init report code instead of success.
func WithInitFailure(code tts.ErrorCode) Option {
	return func(e *Engine) {
		e.initFailure = code
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine is a silent tts.Engine.
type Engine struct {
	wpm         int
	initDelay   time.Duration
	initFailure tts.ErrorCode
	logger      *log.Logger

	mu           sync.Mutex
	listener     tts.ProgressListener
	lang         language.Tag
	pitch        float64
	rate         float64
	cancel       context.CancelFunc
	speakErr     error
	utteranceErr string
	shutdown     bool
	calls        int
}

// New creates a mock engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		wpm:    150,
		logger: log.Default().WithPrefix("mock"),
		lang:   language.AmericanEnglish,
		pitch:  1,
		rate:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init reports readiness after the configured delay.
func (e *Engine) Init(ctx context.Context, done func(tts.InitStatus)) {
	go func() {
		if e.initDelay > 0 {
			t := time.NewTimer(e.initDelay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				done(tts.Failed(tts.CodeError))
				return
			case <-t.C:
			}
		}
		if e.initFailure != 0 {
			e.logger.Debug("Simulating init failure", "code", e.initFailure)
			done(tts.Failed(e.initFailure))
			return
		}
		done(tts.InitSuccess)
	}()
}

// SetLanguage accepts any defined language.
func (e *Engine) SetLanguage(tag language.Tag) error {
	if tag == language.Und {
		return errors.New("undefined language")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lang = tag
	return nil
}

// SetPitch records the pitch. A silent voice has no pitch to change.
func (e *Engine) SetPitch(pitch float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pitch = pitch
	return nil
}

// SetRate scales the speaking pace.
func (e *Engine) SetRate(r float64) error {
	if r <= 0 {
		return errors.New("rate must be positive")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = r
	return nil
}

func (e *Engine) SetProgressListener(l tts.ProgressListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// Speak flushes the current utterance and starts text.
func (e *Engine) Speak(text, utteranceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.shutdown {
		return tts.ErrEngineShutdown
	}
	if e.speakErr != nil {
		return e.speakErr
	}
	if e.cancel != nil {
		e.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	u := utterance{
		id:       utteranceID,
		text:     text,
		listener: e.listener,
		failWith: e.utteranceErr,
		limit:    rate.Limit(float64(tokensPerWord*e.wpm) / 60 * e.rate),
	}
	go e.run(ctx, u)
	return nil
}

// Stop halts the current utterance without reporting done.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return nil
}

// Shutdown stops speaking and rejects further utterances.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.shutdown = true
	return nil
}

// SetFailure makes Speak return err until ClearFailure.
func (e *Engine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = err
}

// SetUtteranceError makes utterances report message instead of finishing.
func (e *Engine) SetUtteranceError(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.utteranceErr = message
}

// ClearFailure undoes SetFailure and SetUtteranceError.
func (e *Engine) ClearFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = nil
	e.utteranceErr = ""
}

// GetCallCount returns the number of Speak calls.
func (e *Engine) GetCallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Voice returns the current language, pitch and rate.
func (e *Engine) Voice() (language.Tag, float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lang, e.pitch, e.rate
}

type utterance struct {
	id       string
	text     string
	listener tts.ProgressListener
	failWith string
	limit    rate.Limit
}

// run reports each word in turn, then waits for the word's share of time.
func (e *Engine) run(ctx context.Context, u utterance) {
	words := segment.Words(u.text)

	burst := tokensPerWord
	for _, w := range words {
		burst = max(burst, tokens(w))
	}
	lim := rate.NewLimiter(u.limit, burst)
	lim.AllowN(time.Now(), burst) // start empty so the first word takes time too

	if ctx.Err() != nil {
		return
	}
	u.listener.Start(u.id)

	if u.failWith != "" {
		u.listener.Error(u.id, u.failWith)
		return
	}

	for _, w := range words {
		if ctx.Err() != nil {
			return
		}
		u.listener.Range(u.id, w.Start, w.End)
		if err := lim.WaitN(ctx, tokens(w)); err != nil {
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	e.logger.Debug("Utterance finished", "id", u.id, "words", len(words))
	u.listener.Done(u.id)
}

func tokens(w segment.Word) int {
	return max(1, int(math.Round(w.Weight*tokensPerWord)))
}

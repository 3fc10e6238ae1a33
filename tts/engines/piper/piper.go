// Package piper speaks through the Piper neural synthesizer. Each utterance
// runs piper once to produce raw PCM, plays it, and derives word ranges from
// the playback position.
package piper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/audio"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/segment"
	"github.com/dgnsrekt/readaloud/internal/subprocess"
	"github.com/dgnsrekt/readaloud/tts"
	ttssync "github.com/dgnsrekt/readaloud/tts/sync"
	"golang.org/x/text/language"
)

const component = "piper"

var (
	// ErrLanguageUnavailable is returned when the model speaks another language.
	ErrLanguageUnavailable = errors.New("language not available for this voice model")

	// ErrNoAudio is reported when piper produced no samples.
	ErrNoAudio = errors.New("piper produced no audio")
)

// Runner runs the piper binary. *subprocess.Manager implements it.
type Runner interface {
	Run(ctx context.Context, opts subprocess.Options) ([]byte, error)
}

// OutputFactory opens the audio output used for playback.
type OutputFactory func(audio.PlayerConfig) (audio.Output, error)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithOutput replaces the audio output factory.
func WithOutput(f OutputFactory) Option {
	return func(e *Engine) {
		e.newOutput = f
	}
}

// WithLookPath replaces the binary lookup done by Init.
func WithLookPath(f func(string) error) Option {
	return func(e *Engine) {
		e.lookPath = f
	}
}

// WithCache uses store for synthesized audio instead of opening one from
// the configured cache directory.
func WithCache(store *cache.Store) Option {
	return func(e *Engine) {
		e.cache = store
	}
}

// WithSyncRate sets how often the playback position is polled.
func WithSyncRate(d time.Duration) Option {
	return func(e *Engine) {
		e.syncRate = d
	}
}

// Engine implements tts.Engine on top of the piper command line tool.
type Engine struct {
	cfg       tts.PiperConfig
	logger    *log.Logger
	runner    Runner
	newOutput OutputFactory
	lookPath  func(string) error
	syncRate  time.Duration

	mu          sync.Mutex
	cache       *cache.Store
	ownsCache   bool
	output      audio.Output
	listener    tts.ProgressListener
	lengthScale float64
	cancel      context.CancelFunc
	ready       bool
	shutdown    bool
}

// New creates a piper engine. Nothing is checked until Init.
func New(cfg tts.PiperConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		logger:      log.Default().WithPrefix("piper"),
		runner:      subprocess.New(cfg.Timeout),
		lookPath:    subprocess.CheckBinary,
		lengthScale: 1,
		newOutput: func(c audio.PlayerConfig) (audio.Output, error) {
			return audio.NewPlayer(c)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init checks the binary and model, opens the audio output and the cache.
func (e *Engine) Init(ctx context.Context, done func(tts.InitStatus)) {
	go func() {
		err := e.init(ctx)
		if err == nil {
			done(tts.InitSuccess)
			return
		}
		e.logger.Warn("Piper failed to start", "err", err)
		var se *tts.SessionError
		if errors.As(err, &se) && se.Code != 0 {
			done(tts.Failed(se.Code))
			return
		}
		done(tts.Failed(tts.CodeError))
	}()
}

// init prepares the engine. Failures are *tts.SessionError carrying the
// init code to report.
func (e *Engine) init(ctx context.Context) error {
	if err := e.lookPath(e.cfg.Binary); err != nil {
		return tts.NewSessionError(fmt.Errorf("binary %s not found: %w", e.cfg.Binary, err), component, "init").
			WithCode(tts.CodeNotInstalledYet)
	}
	model := e.cfg.ModelPath()
	if _, err := os.Stat(model); err != nil {
		return tts.NewSessionError(fmt.Errorf("voice model not found: %w", err), component, "init").
			WithCode(tts.CodeNotInstalledYet)
	}
	if err := ctx.Err(); err != nil {
		return tts.NewSessionError(err, component, "init").WithCode(tts.CodeError)
	}

	out, err := e.newOutput(audio.PlayerConfig{
		SampleRate: e.cfg.SampleRate,
		Channels:   1,
		BufferSize: 4096,
		Volume:     e.cfg.Volume,
	})
	if err != nil {
		return tts.NewSessionError(fmt.Errorf("could not open audio output: %w", err), component, "init").
			WithCode(tts.CodeService)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		_ = out.Close()
		return tts.NewSessionError(tts.ErrEngineShutdown, component, "init").WithCode(tts.CodeError)
	}
	e.output = out
	if e.cache == nil && e.cfg.CacheDir != "" {
		cfg := cache.DefaultConfig(e.cfg.CacheDir)
		cfg.DiskCapacity = int64(e.cfg.CacheMaxSize) << 20
		cfg.CompressionLevel = e.cfg.CompressionLevel
		store, err := cache.NewStore(cfg)
		if err != nil {
			e.logger.Warn("Audio cache disabled", "dir", e.cfg.CacheDir, "err", err)
		} else {
			e.cache, e.ownsCache = store, true
		}
	}
	e.ready = true
	e.logger.Debug("Piper ready", "model", model, "cache", e.cache != nil)
	return nil
}

// SetLanguage succeeds when the model speaks tag's base language.
func (e *Engine) SetLanguage(tag language.Tag) error {
	want, _ := tag.Base()
	have, ok := ModelLanguage(e.cfg.Model)
	if !ok {
		// Custom model names carry no language; trust the user.
		return nil
	}
	if base, _ := have.Base(); base != want {
		return fmt.Errorf("%w: model %s speaks %s, not %s", ErrLanguageUnavailable, e.cfg.Model, have, tag)
	}
	return nil
}

// SetPitch is accepted and ignored; piper voices have a fixed pitch.
func (e *Engine) SetPitch(float64) error {
	return nil
}

// SetRate maps the rate multiplier onto piper's length scale.
func (e *Engine) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", rate)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lengthScale = 1 / rate
	return nil
}

func (e *Engine) SetProgressListener(l tts.ProgressListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// Speak flushes the current utterance and synthesizes text in the
// background.
func (e *Engine) Speak(text, utteranceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.shutdown:
		return tts.ErrEngineShutdown
	case !e.ready:
		return tts.ErrEngineNotReady
	}
	e.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	go e.run(ctx, job{
		id:          utteranceID,
		text:        text,
		lengthScale: e.lengthScale,
		listener:    e.listener,
	})
	return nil
}

// Stop halts the current utterance. A stopped utterance reports nothing
// further.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked()
}

func (e *Engine) stopLocked() error {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.output != nil {
		return e.output.Stop()
	}
	return nil
}

// Shutdown stops speaking and releases the audio output and cache.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutdown {
		return nil
	}
	e.shutdown = true
	e.ready = false

	err := e.stopLocked()
	if e.output != nil {
		err = errors.Join(err, e.output.Close())
		e.output = nil
	}
	if e.ownsCache && e.cache != nil {
		err = errors.Join(err, e.cache.Close())
	}
	e.cache = nil
	return err
}

type job struct {
	id          string
	text        string
	lengthScale float64
	listener    tts.ProgressListener
}

func (e *Engine) run(ctx context.Context, j job) {
	pcm, err := e.synthesize(ctx, j)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		e.logger.Error("Synthesis failed", "id", j.id, "err", err)
		j.listener.Error(j.id, err.Error())
		return
	}

	e.mu.Lock()
	if ctx.Err() != nil || e.output == nil {
		e.mu.Unlock()
		return
	}
	out := e.output
	finished, err := out.Play(pcm)
	e.mu.Unlock()

	if err != nil {
		err = tts.NewSessionError(fmt.Errorf("playback failed: %w", err), component, "play").WithCode(tts.CodeService)
		j.listener.Error(j.id, err.Error())
		return
	}
	j.listener.Start(j.id)

	words := segment.Words(j.text)
	ends := segment.Timeline(words, e.playerConfig().Duration(pcm))
	report := func(i int) {
		if ctx.Err() == nil {
			j.listener.Range(j.id, words[i].Start, words[i].End)
		}
	}
	tracker := ttssync.NewManager(e.syncRate)
	tracker.Start(ends, out.Position, report)
	defer tracker.Stop()

	select {
	case <-ctx.Done():
		e.logger.Debug("Playback interrupted", "id", j.id, "word", tracker.GetCurrentIndex(), "words", len(words))
	case <-finished:
		if ctx.Err() != nil {
			return
		}
		tracker.Complete(report)
		if ctx.Err() == nil {
			e.logger.Debug("Playback finished", "id", j.id, "words", tracker.GetCurrentIndex()+1)
			j.listener.Done(j.id)
		}
	}
}

// synthesize returns PCM for the job, from the cache when possible.
func (e *Engine) synthesize(ctx context.Context, j job) ([]byte, error) {
	e.mu.Lock()
	store := e.cache
	e.mu.Unlock()

	key := cache.Key(j.text, e.cfg.Model, j.lengthScale, e.cfg.SampleRate)
	if store != nil {
		if pcm, level, ok := store.Get(key); ok {
			e.logger.Debug("Audio cache hit", "id", j.id, "level", level)
			return pcm, nil
		}
	}

	started := time.Now()
	pcm, err := e.runner.Run(ctx, subprocess.Options{
		Input:   j.text + "\n",
		Command: e.cfg.Binary,
		Args: []string{
			"--model", e.cfg.ModelPath(),
			"--output-raw",
			"--length_scale", strconv.FormatFloat(j.lengthScale, 'f', 3, 64),
		},
		Timeout: e.cfg.Timeout,
	})
	if err != nil {
		return nil, tts.NewSessionError(fmt.Errorf("piper failed: %w", err), component, "synthesize").
			WithCode(tts.CodeSynthesis)
	}
	if len(pcm) == 0 {
		return nil, tts.NewSessionError(ErrNoAudio, component, "synthesize").WithCode(tts.CodeSynthesis)
	}
	e.logger.Debug("Synthesized", "id", j.id, "bytes", len(pcm), "took", time.Since(started))

	if store != nil {
		if err := store.Put(key, pcm); err != nil {
			e.logger.Debug("Could not cache audio", "err", err)
		}
	}
	return pcm, nil
}

func (e *Engine) playerConfig() audio.PlayerConfig {
	return audio.PlayerConfig{SampleRate: e.cfg.SampleRate, Channels: 1}
}

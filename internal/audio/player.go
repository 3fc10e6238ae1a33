package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrClosed is returned when playing through a closed player.
var ErrClosed = errors.New("player is closed")

// Output plays one PCM buffer at a time.
type Output interface {
	// Play stops any current playback and starts pcm. The returned channel
	// is closed when playback finishes or is stopped.
	Play(pcm []byte) (<-chan struct{}, error)

	// Position returns how much of the current buffer has been heard.
	Position() time.Duration

	// Stop halts playback. It is safe to call when idle.
	Stop() error

	// Close stops playback and releases the player.
	Close() error
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int     // Hz, must match the synthesizer output
	Channels   int     // 1 = mono, 2 = stereo
	BufferSize int     // bytes buffered ahead of the device
	Volume     float64 // 0.0 to 1.0
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 22050,
		Channels:   1,
		BufferSize: 4096,
		Volume:     1.0,
	}
}

// Validate checks the player configuration.
func (c PlayerConfig) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 96000 {
		return fmt.Errorf("sample rate must be between 8000 and 96000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", c.Volume)
	}
	return nil
}

// bytesPerSecond of 16-bit PCM in this configuration.
func (c PlayerConfig) bytesPerSecond() int {
	return c.SampleRate * c.Channels * 2
}

// Duration returns the playing time of pcm.
func (c PlayerConfig) Duration(pcm []byte) time.Duration {
	bps := c.bytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(len(pcm)) * time.Second / time.Duration(bps)
}

// oto allows a single context per process.
var (
	contextMu     sync.Mutex
	sharedContext *oto.Context
	sharedRate    int
	sharedChans   int
)

func otoContext(cfg PlayerConfig) (*oto.Context, error) {
	contextMu.Lock()
	defer contextMu.Unlock()

	if sharedContext != nil {
		if sharedRate != cfg.SampleRate || sharedChans != cfg.Channels {
			return nil, fmt.Errorf("audio device already opened at %d Hz with %d channels", sharedRate, sharedChans)
		}
		return sharedContext, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(cfg.BufferSize) * time.Second / time.Duration(cfg.bytesPerSecond()),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	sharedContext, sharedRate, sharedChans = ctx, cfg.SampleRate, cfg.Channels
	return ctx, nil
}

// Player plays PCM through the system audio device.
type Player struct {
	config PlayerConfig
	ctx    *oto.Context

	mu       sync.Mutex
	player   *oto.Player
	reader   *countingReader
	duration time.Duration
	finish   func()
	closed   bool
}

// NewPlayer opens the audio device. Every player in the process must use
// the same sample rate and channel count.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, err := otoContext(config)
	if err != nil {
		return nil, err
	}

	return &Player{
		config: config,
		ctx:    ctx,
	}, nil
}

// Play implements Output.
func (p *Player) Play(pcm []byte) (<-chan struct{}, error) {
	if len(pcm) == 0 {
		return nil, errors.New("audio data is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	p.stopLocked()

	// The player reads from its own copy for as long as it plays.
	data := make([]byte, len(pcm))
	copy(data, pcm)

	reader := &countingReader{r: bytes.NewReader(data)}
	player := p.ctx.NewPlayer(reader)
	player.SetVolume(p.config.Volume)

	done := make(chan struct{})
	stop := make(chan struct{})
	var once sync.Once
	finish := func() {
		once.Do(func() {
			close(stop)
			close(done)
		})
	}

	p.player = player
	p.reader = reader
	p.duration = p.config.Duration(data)
	p.finish = finish

	player.Play()
	go watch(player, stop, finish)

	return done, nil
}

// watch closes done once the player drained its input.
func watch(player *oto.Player, stop <-chan struct{}, finish func()) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !player.IsPlaying() {
				finish()
				return
			}
		}
	}
}

// Position implements Output.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return 0
	}

	heard := p.reader.n.Load() - int64(p.player.BufferedSize())
	if heard < 0 {
		heard = 0
	}
	pos := time.Duration(heard) * time.Second / time.Duration(p.config.bytesPerSecond())
	if pos > p.duration {
		pos = p.duration
	}
	return pos
}

// Stop implements Output.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *Player) stopLocked() error {
	if p.player == nil {
		return nil
	}

	p.player.Pause()
	err := p.player.Close()
	p.finish()

	p.player = nil
	p.reader = nil
	p.finish = nil
	p.duration = 0

	if err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}
	return nil
}

// Close implements Output. The shared device stays open for later players.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.stopLocked()
	p.closed = true
	return err
}

// countingReader counts the bytes handed to the device.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n.Add(int64(n))
	return n, err
}

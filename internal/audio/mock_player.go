package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// MockPlayer implements Output without producing sound. Playback takes
// the real duration of the PCM divided by the speed factor.
type MockPlayer struct {
	config PlayerConfig
	speed  float64

	mu       sync.Mutex
	start    time.Time
	duration time.Duration
	timer    *time.Timer
	finish   func()
	closed   bool

	// Metrics for testing
	playCount atomic.Int64
	stopCount atomic.Int64
	lastPCM   []byte
}

// NewMockPlayer creates a silent player. A speed of 10 plays ten times
// faster than real time.
func NewMockPlayer(config PlayerConfig, speed float64) *MockPlayer {
	if speed <= 0 {
		speed = 1
	}
	return &MockPlayer{
		config: config,
		speed:  speed,
	}
}

// Play implements Output.
func (m *MockPlayer) Play(pcm []byte) (<-chan struct{}, error) {
	if len(pcm) == 0 {
		return nil, errors.New("audio data is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	m.stopLocked()

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	m.playCount.Add(1)
	m.lastPCM = pcm
	m.start = time.Now()
	m.duration = m.config.Duration(pcm)
	m.finish = finish
	m.timer = time.AfterFunc(time.Duration(float64(m.duration)/m.speed), finish)

	return done, nil
}

// Position implements Output.
func (m *MockPlayer) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finish == nil {
		return 0
	}
	pos := time.Duration(float64(time.Since(m.start)) * m.speed)
	if pos > m.duration {
		pos = m.duration
	}
	return pos
}

// Stop implements Output.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return nil
}

func (m *MockPlayer) stopLocked() {
	if m.finish == nil {
		return
	}
	m.stopCount.Add(1)
	m.timer.Stop()
	m.finish()
	m.finish = nil
	m.timer = nil
}

// Close implements Output.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.closed = true
	return nil
}

// GetPlayCount returns how many buffers were played.
func (m *MockPlayer) GetPlayCount() int64 {
	return m.playCount.Load()
}

// GetStopCount returns how many times a loaded buffer was stopped.
func (m *MockPlayer) GetStopCount() int64 {
	return m.stopCount.Load()
}

// LastPCM returns the buffer passed to the last Play call.
func (m *MockPlayer) LastPCM() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPCM
}

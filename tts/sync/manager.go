// Package sync keeps word highlighting in step with audio playback.
package sync

import (
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/internal/segment"
)

// PositionFunc reports how much audio has been played.
type PositionFunc func() time.Duration

// Manager polls the playback position and reports the word being spoken
// whenever it changes.
type Manager struct {
	mu           sync.RWMutex
	ends         []time.Duration
	currentIndex int
	running      bool

	updateRate time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewManager creates a new synchronization manager polling at updateRate.
func NewManager(updateRate time.Duration) *Manager {
	if updateRate <= 0 {
		updateRate = 30 * time.Millisecond
	}
	return &Manager{
		updateRate:   updateRate,
		currentIndex: -1,
	}
}

// Start begins tracking. ends are the word end times from
// segment.Timeline. onChange runs on the tracking goroutine, first for word
// 0 and then for every later word reached; it must not call Stop.
func (m *Manager) Start(ends []time.Duration, position PositionFunc, onChange func(int)) {
	m.Stop()
	if len(ends) == 0 {
		return
	}

	m.mu.Lock()
	m.ends = ends
	m.currentIndex = -1
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	go m.syncLoop(position, onChange, stopCh, doneCh)
}

// Stop halts tracking and waits until no callback is running. It is safe
// to call when not running.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	<-doneCh
}

// GetCurrentIndex returns the index of the word last reported, or -1.
func (m *Manager) GetCurrentIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentIndex
}

func (m *Manager) syncLoop(position PositionFunc, onChange func(int), stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.updateRate)
	defer ticker.Stop()

	m.update(position(), onChange)
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.update(position(), onChange)
		}
	}
}

// update reports every word up to the one at pos, so a slow poll never
// skips a word.
func (m *Manager) update(pos time.Duration, onChange func(int)) {
	m.advance(segment.At(m.ends, pos), onChange)
}

func (m *Manager) advance(index int, onChange func(int)) {
	m.mu.Lock()
	prev := m.currentIndex
	if index <= prev {
		m.mu.Unlock()
		return
	}
	m.currentIndex = index
	m.mu.Unlock()

	if onChange == nil {
		return
	}
	for i := prev + 1; i <= index; i++ {
		onChange(i)
	}
}

// Complete stops tracking and reports the words not reached yet, on the
// calling goroutine. Use it when playback ran to the end.
func (m *Manager) Complete(onChange func(int)) {
	m.Stop()

	m.mu.RLock()
	last := len(m.ends) - 1
	m.mu.RUnlock()
	m.advance(last, onChange)
}

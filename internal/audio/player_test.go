package audio

import (
	"errors"
	"testing"
	"time"
)

// TestPlayerConfig tests the player configuration validation.
func TestPlayerConfig(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*PlayerConfig)
		expectErr bool
	}{
		{"default", func(*PlayerConfig) {}, false},
		{"stereo 48000Hz", func(c *PlayerConfig) { c.SampleRate, c.Channels = 48000, 2 }, false},
		{"sample rate too low", func(c *PlayerConfig) { c.SampleRate = 4000 }, true},
		{"invalid channels", func(c *PlayerConfig) { c.Channels = 3 }, true},
		{"zero buffer", func(c *PlayerConfig) { c.BufferSize = 0 }, true},
		{"volume too high", func(c *PlayerConfig) { c.Volume = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPlayerConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.expectErr {
				t.Errorf("Validate() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}

// TestDuration tests PCM duration calculation.
func TestDuration(t *testing.T) {
	cfg := DefaultPlayerConfig()

	// One second of 16-bit mono audio at 22050 Hz.
	if d := cfg.Duration(make([]byte, 44100)); d != time.Second {
		t.Errorf("Duration() = %v, want 1s", d)
	}

	cfg.Channels = 2
	if d := cfg.Duration(make([]byte, 44100)); d != 500*time.Millisecond {
		t.Errorf("Stereo Duration() = %v, want 500ms", d)
	}
}

// TestMockPlayerPlaysToCompletion tests that done closes after the buffer
// has been played.
func TestMockPlayerPlaysToCompletion(t *testing.T) {
	p := NewMockPlayer(DefaultPlayerConfig(), 100)

	// One second of audio at 100x speed.
	done, err := p.Play(make([]byte, 44100))
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Playback did not complete")
	}

	if pos := p.Position(); pos != time.Second {
		t.Errorf("Position after completion = %v, want 1s", pos)
	}
	if p.GetPlayCount() != 1 {
		t.Errorf("Expected 1 play, got %d", p.GetPlayCount())
	}
}

// TestMockPlayerStop tests that Stop closes done right away.
func TestMockPlayerStop(t *testing.T) {
	p := NewMockPlayer(DefaultPlayerConfig(), 1)

	done, err := p.Play(make([]byte, 44100*10))
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Stop did not end playback")
	}

	if p.Position() != 0 {
		t.Errorf("Position after stop = %v, want 0", p.Position())
	}
	if p.GetStopCount() != 1 {
		t.Errorf("Expected 1 stop, got %d", p.GetStopCount())
	}
}

// TestMockPlayerPlayReplaces tests that a new buffer ends the previous one.
func TestMockPlayerPlayReplaces(t *testing.T) {
	p := NewMockPlayer(DefaultPlayerConfig(), 1)

	first, err := p.Play(make([]byte, 44100*10))
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if _, err := p.Play([]byte{1, 2}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	select {
	case <-first:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("First playback was not ended by the second")
	}
	if got := p.LastPCM(); len(got) != 2 {
		t.Errorf("LastPCM() has %d bytes, want 2", len(got))
	}
}

// TestMockPlayerErrors tests invalid use.
func TestMockPlayerErrors(t *testing.T) {
	p := NewMockPlayer(DefaultPlayerConfig(), 1)

	if _, err := p.Play(nil); err == nil {
		t.Error("Expected error for empty audio")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := p.Play([]byte{0, 0}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

var _ Output = (*Player)(nil)
var _ Output = (*MockPlayer)(nil)

package tts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestProvider(f *fakeFactory) *Provider {
	return NewProvider(f.New, WithLogger(quietLogger()))
}

// TestProviderReturnsSameSession tests that the live session is reused.
func TestProviderReturnsSameSession(t *testing.T) {
	p := newTestProvider(&fakeFactory{})

	s1 := p.Session()
	s2 := p.Session()
	if s1 != s2 {
		t.Error("Expected the same session until it is destroyed")
	}
}

// TestProviderFreshSessionAfterDestroy tests that destroy resets state.
func TestProviderFreshSessionAfterDestroy(t *testing.T) {
	tests := []struct {
		name    string
		destroy func(p *Provider, s *Session)
	}{
		{"provider destroy", func(p *Provider, _ *Session) { p.Destroy() }},
		{"session destroy", func(_ *Provider, s *Session) { s.Destroy() }},
		{"session close", func(_ *Provider, s *Session) { _ = s.Close() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(&fakeFactory{})

			s1 := p.Session()
			if err := s1.SetPitchAndRate(1.5, 1.5); err != nil {
				t.Fatalf("SetPitchAndRate failed: %v", err)
			}
			tt.destroy(p, s1)

			s2 := p.Session()
			if s1 == s2 {
				t.Fatal("Expected a new session after destroy")
			}
			if v := s2.Voice(); v.Pitch != DefaultPitchAndRate || v.Rate != DefaultPitchAndRate {
				t.Errorf("New session should have default voice, got %v", v)
			}
			if s2.State() != StateIdle {
				t.Errorf("New session state = %v, want idle", s2.State())
			}
		})
	}
}

// TestProviderDestroyedSessionDoesNotReleaseSuccessor tests that a stale
// session destroyed late leaves the live one alone.
func TestProviderDestroyedSessionDoesNotReleaseSuccessor(t *testing.T) {
	p := newTestProvider(&fakeFactory{})

	s1 := p.Session()
	s1.Destroy()
	s2 := p.Session()
	s1.Destroy()

	if p.Session() != s2 {
		t.Error("Destroying a stale session must not replace the live one")
	}
}

// TestProviderRangesResumeOnFreshSession tests that ranges are forwarded
// again, relative to the new text, once a fresh session speaks.
func TestProviderRangesResumeOnFreshSession(t *testing.T) {
	f := &fakeFactory{}
	p := newTestProvider(f)

	rec1 := &recorder{}
	s1 := rec1.attach(p.Session())
	s1.Speak("Hello world")
	e1 := f.engine(t, 0)
	l1, id1 := e1.progress(), e1.lastID(t)

	p.Destroy()
	l1.Range(id1, 6, 11)

	rec2 := &recorder{}
	s2 := rec2.attach(p.Session())
	s2.Speak("Bye")
	e2 := f.engine(t, 1)
	l2, id2 := e2.progress(), e2.lastID(t)
	l2.Range(id2, 0, 3)
	l1.Range(id1, 0, 5)

	assertEvents(t, rec1.get(), nil)
	assertEvents(t, rec2.get(), []string{"range(0,3)"})
}

// TestProviderUse tests scoped acquisition.
func TestProviderUse(t *testing.T) {
	t.Run("destroys on success", func(t *testing.T) {
		f := &fakeFactory{}
		p := newTestProvider(f)

		var used *Session
		err := p.Use(func(s *Session) error {
			used = s
			s.Speak("Hello")
			return nil
		})
		if err != nil {
			t.Fatalf("Use failed: %v", err)
		}
		if used.State() != StateDestroyed {
			t.Errorf("Expected session destroyed after Use, got %v", used.State())
		}
		if e := f.engine(t, 0); e.shutdown != 1 {
			t.Errorf("Expected engine shut down once, got %d", e.shutdown)
		}
		if p.Session() == used {
			t.Error("Expected a fresh session after Use")
		}
	})

	t.Run("destroys on error", func(t *testing.T) {
		p := newTestProvider(&fakeFactory{})
		wantErr := errors.New("boom")

		var used *Session
		err := p.Use(func(s *Session) error {
			used = s
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("Expected %v, got %v", wantErr, err)
		}
		if used.State() != StateDestroyed {
			t.Errorf("Expected session destroyed after Use, got %v", used.State())
		}
	})

	t.Run("destroys on panic", func(t *testing.T) {
		p := newTestProvider(&fakeFactory{})

		var used *Session
		func() {
			defer func() { _ = recover() }()
			_ = p.Use(func(s *Session) error {
				used = s
				panic("boom")
			})
		}()
		if used == nil || used.State() != StateDestroyed {
			t.Error("Expected session destroyed after panic")
		}
	})
}

// TestProviderLifecycle tests lifecycle-bound teardown through the
// provider.
func TestProviderLifecycle(t *testing.T) {
	p := newTestProvider(&fakeFactory{})
	ctx, cancel := context.WithCancel(context.Background())

	s1 := p.Session().RegisterLifecycle(ctx)
	cancel()

	deadline := time.Now().Add(time.Second)
	for p.Session() == s1 {
		if time.Now().After(deadline) {
			t.Fatal("Provider still returns the session after its lifecycle ended")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package tts

import "sync"

// Provider hands out the one live Session of its owner. It replaces a
// process-wide singleton: create it once at the composition root and pass
// it to whatever drives speech.
type Provider struct {
	factory EngineFactory
	opts    []Option

	mu      sync.Mutex
	current *Session
}

// NewProvider creates a provider building sessions with factory and opts.
func NewProvider(factory EngineFactory, opts ...Option) *Provider {
	return &Provider{
		factory: factory,
		opts:    opts,
	}
}

// Session returns the live session, creating a fresh one with default
// settings if there is none or the previous one was destroyed.
func (p *Provider) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		s := New(p.factory, p.opts...)
		s.onDestroy = p.release
		p.current = s
	}
	return p.current
}

// Destroy destroys the live session, if any.
func (p *Provider) Destroy() {
	p.mu.Lock()
	s := p.current
	p.mu.Unlock()

	if s != nil {
		s.Destroy()
	}
}

// Use acquires the session, runs fn and destroys the session on every
// return path, including panics.
func (p *Provider) Use(fn func(*Session) error) error {
	s := p.Session()
	defer s.Destroy()
	return fn(s)
}

func (p *Provider) release(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == s {
		p.current = nil
	}
}

package engines

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
)

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*tts.Config)
		wantErr bool
		check   func(t *testing.T, e tts.Engine)
	}{
		{
			name: "mock",
			check: func(t *testing.T, e tts.Engine) {
				if _, ok := e.(*mock.Engine); !ok {
					t.Errorf("Expected *mock.Engine, got %T", e)
				}
			},
		},
		{
			name:   "piper",
			modify: func(c *tts.Config) { c.Engine = "Piper" },
			check: func(t *testing.T, e tts.Engine) {
				if _, ok := e.(*piper.Engine); !ok {
					t.Errorf("Expected *piper.Engine, got %T", e)
				}
			},
		},
		{
			name:    "unknown engine",
			modify:  func(c *tts.Config) { c.Engine = "sapi" },
			wantErr: true,
		},
		{
			name:    "bad init failure",
			modify:  func(c *tts.Config) { c.Mock.InitFailure = "EXPLODED" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tts.DefaultConfig()
			if tt.modify != nil {
				tt.modify(&cfg)
			}

			factory, err := NewFactory(cfg, nil)
			if tt.wantErr {
				if !errors.Is(err, tts.ErrInvalidConfig) {
					t.Fatalf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFactory failed: %v", err)
			}

			first, err := factory()
			if err != nil {
				t.Fatalf("factory failed: %v", err)
			}
			second, _ := factory()
			if first == second {
				t.Error("factory should create a fresh engine on every call")
			}
			tt.check(t, first)
		})
	}
}

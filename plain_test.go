package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/ui"
)

func newMockProvider(opts ...mock.Option) *tts.Provider {
	opts = append([]mock.Option{mock.WithWordsPerMinute(6000)}, opts...)
	return tts.NewProvider(func() (tts.Engine, error) {
		return mock.New(opts...), nil
	})
}

func TestRunPlain(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		markdown bool
		want     string
	}{
		{"text", "Hello there, world.", false, "Hello there, world.\n"},
		{"markdown", "# Title\n\nSome *words*.", true, "Title. Some words.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var buf bytes.Buffer
			doc := ui.NewDocument("", tt.source, tt.markdown)
			if err := runPlain(ctx, newMockProvider(), doc, &buf, "yellow"); err != nil {
				t.Fatalf("runPlain failed: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRunPlainInitFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider := newMockProvider(mock.WithInitFailure(tts.CodeNotInstalledYet))
	err := runPlain(ctx, provider, ui.NewDocument("", "hello", false), &bytes.Buffer{}, "yellow")
	if err == nil {
		t.Fatal("Expected an error when the engine fails to start")
	}
	if !strings.Contains(err.Error(), "speech failed") {
		t.Errorf("Unexpected error: %v", err)
	}
	var se *tts.SessionError
	if !errors.As(err, &se) || se.Code != tts.CodeNotInstalledYet || se.Action != "init" {
		t.Errorf("Expected an init error with the engine code, got %#v", err)
	}
	if tts.IsRecoverableError(err) {
		t.Error("A missing engine should not be recoverable")
	}
}

func TestRunPlainRetriesRecoverableFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var created int
	provider := tts.NewProvider(func() (tts.Engine, error) {
		created++
		opts := []mock.Option{mock.WithWordsPerMinute(6000)}
		if created == 1 {
			opts = append(opts, mock.WithInitFailure(tts.CodeNetwork))
		}
		return mock.New(opts...), nil
	})

	var buf bytes.Buffer
	err := runPlain(ctx, provider, ui.NewDocument("", "try again", false), &buf, "yellow")
	if err != nil {
		t.Fatalf("runPlain failed: %v", err)
	}
	if created != 2 {
		t.Errorf("Expected a second engine for the retry, got %d", created)
	}
	if buf.String() != "try again\n" {
		t.Errorf("output = %q, want the whole text", buf.String())
	}
}

func TestRunPlainGivesUpAfterRetry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider := newMockProvider(mock.WithInitFailure(tts.CodeNetworkTimeout))
	err := runPlain(ctx, provider, ui.NewDocument("", "hello", false), &bytes.Buffer{}, "yellow")
	if err == nil {
		t.Fatal("Expected an error once the retry failed too")
	}
	if !tts.IsRecoverableError(err) {
		t.Errorf("A timeout should stay recoverable, got %v", err)
	}
}

func TestRunPlainCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	provider := tts.NewProvider(func() (tts.Engine, error) {
		return mock.New(mock.WithWordsPerMinute(60)), nil
	})
	var buf bytes.Buffer
	text := strings.Repeat("slow ", 20)
	err := runPlain(ctx, provider, ui.NewDocument("", text, false), &buf, "yellow")
	if err == nil {
		t.Fatal("Expected the context error")
	}
	if buf.String() != text+"\n" {
		t.Errorf("output = %q, want the whole text", buf.String())
	}
	if provider.Session().State() != tts.StateIdle {
		t.Error("Session should have been destroyed")
	}
}

func TestIsMarkdownFile(t *testing.T) {
	for path, want := range map[string]bool{
		"README.md":      true,
		"notes.MARKDOWN": true,
		"story.txt":      false,
		"Makefile":       false,
	} {
		if got := isMarkdownFile(path); got != want {
			t.Errorf("isMarkdownFile(%q) = %v, want %v", path, got, want)
		}
	}
}

package tts

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrorCodeString tests the fixed code table.
func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{-1, "ERROR"},
		{-3, "ERROR_SYNTHESIS"},
		{-4, "ERROR_SERVICE"},
		{-6, "ERROR_NETWORK"},
		{-7, "ERROR_NETWORK_TIMEOUT"},
		{-8, "ERROR_INVALID_REQUEST"},
		{-9, "ERROR_NOT_INSTALLED_YET"},
		{-2, "UNKNOWN"},
		{-5, "UNKNOWN"},
		{0, "UNKNOWN"},
		{42, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ErrorCode(tt.code).String(); got != tt.want {
				t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

// TestParseErrorCode tests looking codes up by name.
func TestParseErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		want   ErrorCode
		wantOK bool
	}{
		{"ERROR_NETWORK", CodeNetwork, true},
		{"network", CodeNetwork, true},
		{" Network_Timeout ", CodeNetworkTimeout, true},
		{"error", CodeError, true},
		{"not_installed_yet", CodeNotInstalledYet, true},
		{"UNKNOWN", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseErrorCode(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseErrorCode(%q) = %v, %v, want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestInitStatus tests the init status helpers.
func TestInitStatus(t *testing.T) {
	if !InitSuccess.OK() {
		t.Error("InitSuccess should be OK")
	}
	status := Failed(CodeSynthesis)
	if status.OK() {
		t.Error("Failed status should not be OK")
	}
	if status.Code() != CodeSynthesis {
		t.Errorf("Code() = %v, want %v", status.Code(), CodeSynthesis)
	}
}

// TestSessionError tests error wrapping.
func TestSessionError(t *testing.T) {
	base := errors.New("piper exited")
	err := NewSessionError(base, "piper", "synthesize")

	if !errors.Is(err, base) {
		t.Error("SessionError should unwrap to the underlying error")
	}
	if err.Error() != "piper exited" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	coded := NewSessionError(nil, "engine", "init").WithCode(CodeNetwork)
	if coded.Error() != "ERROR_NETWORK" {
		t.Errorf("Error() = %q, want ERROR_NETWORK", coded.Error())
	}

	wrapped := fmt.Errorf("speak: %w", err)
	var se *SessionError
	if !errors.As(wrapped, &se) || se.Component != "piper" {
		t.Error("SessionError should be found through wrapping")
	}
}

// TestIsRecoverableError tests the recoverability classification.
func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"destroyed", ErrSessionDestroyed, false},
		{"no factory", fmt.Errorf("start: %w", ErrNoFactory), false},
		{"invalid config", ErrInvalidConfig, false},
		{"not installed", NewSessionError(nil, "engine", "init").WithCode(CodeNotInstalledYet), false},
		{"network", NewSessionError(nil, "engine", "init").WithCode(CodeNetwork), true},
		{"not ready", ErrEngineNotReady, true},
		{"other", errors.New("temporary"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverableError(tt.err); got != tt.want {
				t.Errorf("IsRecoverableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package tts

import (
	"errors"
	"strings"
	"time"
)

// Common errors for the speech session.
var (
	ErrSessionDestroyed = errors.New("speech session has been destroyed")
	ErrEngineNotReady   = errors.New("speech engine is not ready")
	ErrEngineShutdown   = errors.New("speech engine has been shut down")
	ErrNoFactory        = errors.New("no speech engine factory configured")
	ErrEmptyText        = errors.New("nothing to speak")
	ErrInvalidPitch     = errors.New("pitch must be greater than 0 and at most 2")
	ErrInvalidRate      = errors.New("rate must be greater than 0 and at most 2")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// ErrorCode is a failure code reported by an engine during initialization.
// The values match the platform speech service codes.
type ErrorCode int

const (
	CodeError           ErrorCode = -1
	CodeSynthesis       ErrorCode = -3
	CodeService         ErrorCode = -4
	CodeNetwork         ErrorCode = -6
	CodeNetworkTimeout  ErrorCode = -7
	CodeInvalidRequest  ErrorCode = -8
	CodeNotInstalledYet ErrorCode = -9
)

var codeNames = map[ErrorCode]string{
	CodeError:           "ERROR",
	CodeInvalidRequest:  "ERROR_INVALID_REQUEST",
	CodeNetwork:         "ERROR_NETWORK",
	CodeNetworkTimeout:  "ERROR_NETWORK_TIMEOUT",
	CodeService:         "ERROR_SERVICE",
	CodeSynthesis:       "ERROR_SYNTHESIS",
	CodeNotInstalledYet: "ERROR_NOT_INSTALLED_YET",
}

// String returns the fixed name of the code, or "UNKNOWN".
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseErrorCode looks up a code by name, with or without the "ERROR_"
// prefix and in any case.
func ParseErrorCode(name string) (ErrorCode, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for code, n := range codeNames {
		if name == n || "ERROR_"+name == n {
			return code, true
		}
	}
	return 0, false
}

// SessionError provides detailed error information.
type SessionError struct {
	Err       error  // The underlying error
	Component string // Component that generated the error
	Action    string // Action being performed when the error occurred
	Code      ErrorCode
	Timestamp time.Time
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != 0 {
		return e.Code.String()
	}
	return "unknown speech error"
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new error with context.
func NewSessionError(err error, component, action string) *SessionError {
	return &SessionError{
		Err:       err,
		Component: component,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// WithCode attaches an engine error code.
func (e *SessionError) WithCode(code ErrorCode) *SessionError {
	e.Code = code
	return e
}

// IsRecoverableError checks if a later Speak can succeed after err.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, ErrSessionDestroyed),
		errors.Is(err, ErrNoFactory),
		errors.Is(err, ErrInvalidConfig):
		return false
	}
	var se *SessionError
	if errors.As(err, &se) && se.Code == CodeNotInstalledYet {
		return false
	}
	return true
}
